package timebank

import (
	"context"
	"time"
)

type StoreAPI interface {
	// OpenTimeEntry fails with a conflict while the employee has an open entry.
	OpenTimeEntry(ctx context.Context, entry TimeEntry) error
	// CloseTimeEntry closes the most recent open entry.
	CloseTimeEntry(ctx context.Context, employeeID string, at time.Time) (TimeEntry, error)
	OpenEntryFor(ctx context.Context, employeeID string) (TimeEntry, error)
	ClosedEntries(ctx context.Context, employeeID string, from, to time.Time) ([]TimeEntry, error)

	CreateLeaveRequest(ctx context.Context, req LeaveRequest) error
	GetLeaveRequest(ctx context.Context, id string) (LeaveRequest, error)
	ListLeaveRequests(ctx context.Context, filter LeaveFilter) ([]LeaveRequest, error)
	// ResolveLeaveRequest moves a Pending request to status. Approval debits
	// the overtime balance in the same transaction and fails with
	// insufficient_balance when the balance no longer covers it.
	ResolveLeaveRequest(ctx context.Context, id, status, decidedBy string, at time.Time) (LeaveRequest, error)

	AdjustBalance(ctx context.Context, adj Adjustment) (float64, error)
	ListAdjustments(ctx context.Context, employeeID string) ([]Adjustment, error)
}
