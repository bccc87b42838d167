package staff

import "time"

type Employee struct {
	ID              string    `json:"id"`
	FullName        string    `json:"fullName"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	MonthlyHours    float64   `json:"monthlyHours"`
	OvertimeBalance float64   `json:"overtimeBalance"`
	CreatedAt       time.Time `json:"createdAt"`
}

type NewEmployee struct {
	FullName     string  `json:"fullName"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	MonthlyHours float64 `json:"monthlyHours"`
	Password     string  `json:"password"`
}

// Balance is the manager view of one employee's time bank.
type Balance struct {
	EmployeeID      string  `json:"employeeId"`
	FullName        string  `json:"fullName"`
	MonthlyHours    float64 `json:"monthlyHours"`
	OvertimeBalance float64 `json:"overtimeBalance"`
}
