package roster

import "time"

type Area struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type Shift struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employeeId"`
	EmployeeName string    `json:"employeeName,omitempty"`
	AreaID       string    `json:"areaId"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	Published    bool      `json:"published"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (s Shift) Hours() float64 {
	return s.End.Sub(s.Start).Hours()
}

func (s Shift) Overlaps(start, end time.Time) bool {
	return s.Start.Before(end) && s.End.After(start)
}

type ShiftInput struct {
	EmployeeID string    `json:"employeeId"`
	AreaID     string    `json:"areaId"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

type ShiftUpdate struct {
	EmployeeID *string    `json:"employeeId,omitempty"`
	AreaID     *string    `json:"areaId,omitempty"`
	Start      *time.Time `json:"start,omitempty"`
	End        *time.Time `json:"end,omitempty"`
	Published  *bool      `json:"published,omitempty"`
}

type Filter struct {
	From       time.Time
	To         time.Time
	EmployeeID string
	AreaID     string
}

const (
	WarningUnavailable = "employee_unavailable"
	WarningOverlap     = "overlapping_shift"
)

type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	ShiftID string `json:"shiftId,omitempty"`
}

// Planned is a written shift together with the advisory warnings raised for it.
type Planned struct {
	Shift    Shift     `json:"shift"`
	Warnings []Warning `json:"warnings"`
}

// ReleasedOffer is an active swap offer rejected because its shift changed hands or was removed.
type ReleasedOffer struct {
	OfferID     string
	RequesterID string
	TakerID     string
}

type Candidate struct {
	EmployeeID string `json:"employeeId"`
	FullName   string `json:"fullName"`
	Role       string `json:"role"`
	Status     string `json:"status"`
	Note       string `json:"note,omitempty"`
	Busy       bool   `json:"busy"`
}

type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}
