package swap

import "time"

const (
	StatusOpen            = "Open"
	StatusPendingApproval = "Pending_Approval"
	StatusApproved        = "Approved"
	StatusRejected        = "Rejected"
)

// Offer is a request to hand a shift to another employee.
// Shift fields are filled on reads when the shift still exists.
type Offer struct {
	ID            string     `json:"id"`
	ShiftID       string     `json:"shiftId"`
	RequesterID   string     `json:"requesterId"`
	RequesterName string     `json:"requesterName,omitempty"`
	TakerID       string     `json:"takerId,omitempty"`
	TakerName     string     `json:"takerName,omitempty"`
	Status        string     `json:"status"`
	DecidedBy     string     `json:"decidedBy,omitempty"`
	ShiftStart    *time.Time `json:"shiftStart,omitempty"`
	ShiftEnd      *time.Time `json:"shiftEnd,omitempty"`
	AreaID        string     `json:"areaId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// Active reports whether the offer still blocks new offers for its shift.
func (o Offer) Active() bool {
	return o.Status != StatusRejected
}

type Filter struct {
	Status           string
	ExcludeRequester string
	RequesterID      string
}
