package notifications

import "time"

type Notification struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Body       string     `json:"body"`
	ReadAt     *time.Time `json:"readAt,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
}

type message struct {
	ntype string
	title string
	body  string
}
