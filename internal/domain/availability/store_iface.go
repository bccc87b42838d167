package availability

import (
	"context"
	"time"
)

// ApplyFunc receives the current entry (Neutral when absent) and returns the
// entry to persist. Returning a Neutral entry removes the row.
type ApplyFunc func(current Entry) (Entry, error)

type StoreAPI interface {
	ApplyAvailability(ctx context.Context, employeeID string, date time.Time, fn ApplyFunc) (Entry, error)
	AvailabilityForDate(ctx context.Context, date time.Time) ([]Entry, error)
	AvailabilityForEmployee(ctx context.Context, employeeID string, from, to time.Time) ([]Entry, error)
	PruneAvailability(ctx context.Context, before time.Time) (int64, error)
}
