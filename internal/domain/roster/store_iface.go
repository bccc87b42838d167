package roster

import (
	"context"
	"time"
)

type StoreAPI interface {
	UpsertAreas(ctx context.Context, areas []Area) error
	ListAreas(ctx context.Context) ([]Area, error)
	GetArea(ctx context.Context, id string) (Area, error)
	InsertShifts(ctx context.Context, shifts []Shift) error
	GetShift(ctx context.Context, id string) (Shift, error)
	// UpdateShift writes shift only while the stored row still has read's
	// employee and updated_at, else Conflict. When releaseOffers is set the
	// shift's active offers are rejected in the same transaction.
	UpdateShift(ctx context.Context, shift Shift, read Shift, releaseOffers bool, decidedBy string) ([]ReleasedOffer, error)
	DeleteShift(ctx context.Context, id, decidedBy string, at time.Time) ([]ReleasedOffer, error)
	ListShifts(ctx context.Context, filter Filter) ([]Shift, error)
	OverlappingShifts(ctx context.Context, employeeID string, start, end time.Time) ([]Shift, error)
	CountShifts(ctx context.Context, from, to time.Time) (int, error)
}
