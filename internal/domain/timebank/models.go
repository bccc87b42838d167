package timebank

import "time"

const (
	LeavePending  = "Pending"
	LeaveApproved = "Approved"
	LeaveRejected = "Rejected"
)

type TimeEntry struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	ClockIn    time.Time  `json:"clockIn"`
	ClockOut   *time.Time `json:"clockOut,omitempty"`
}

func (e TimeEntry) Open() bool {
	return e.ClockOut == nil
}

// Hours is the worked duration of a closed entry.
func (e TimeEntry) Hours() float64 {
	if e.ClockOut == nil {
		return 0
	}
	return e.ClockOut.Sub(e.ClockIn).Hours()
}

type LeaveRequest struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	EmployeeName string     `json:"employeeName,omitempty"`
	Date         time.Time  `json:"date"`
	Hours        float64    `json:"hours"`
	Status       string     `json:"status"`
	DecidedBy    string     `json:"decidedBy,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	DecidedAt    *time.Time `json:"decidedAt,omitempty"`
}

type LeaveFilter struct {
	EmployeeID string
	Status     string
}

type Adjustment struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Delta      float64   `json:"delta"`
	Reason     string    `json:"reason"`
	ActorID    string    `json:"actorId"`
	CreatedAt  time.Time `json:"createdAt"`
}

type MonthSummary struct {
	EmployeeID      string    `json:"employeeId"`
	Month           time.Time `json:"month"`
	WorkedHours     float64   `json:"workedHours"`
	ContractedHours float64   `json:"contractedHours"`
	Difference      float64   `json:"difference"`
	OvertimeBalance float64   `json:"overtimeBalance"`
}
