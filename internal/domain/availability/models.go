package availability

import "time"

const (
	StatusNeutral     = "Neutral"
	StatusAvailable   = "Available"
	StatusUnavailable = "Unavailable"
)

// Entry is one employee's declared availability for a calendar day.
// A Neutral entry is never stored.
type Entry struct {
	EmployeeID string    `json:"employeeId"`
	Date       time.Time `json:"date"`
	Status     string    `json:"status"`
	Note       string    `json:"note,omitempty"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Change describes a write. With neither field set the status cycles.
type Change struct {
	Status *string `json:"status,omitempty"`
	Note   *string `json:"note,omitempty"`
}

// Day is a calendar cell; days without an entry are Neutral.
type Day struct {
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
	Note   string    `json:"note,omitempty"`
}
