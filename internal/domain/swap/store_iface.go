package swap

import (
	"context"
	"time"
)

type StoreAPI interface {
	// CreateOffer fails with a conflict when the shift already has an active
	// offer and with permission denied when the requester no longer holds it.
	CreateOffer(ctx context.Context, offer Offer) error
	GetOffer(ctx context.Context, id string) (Offer, error)
	ActiveOfferForShift(ctx context.Context, shiftID string) (Offer, error)
	// ClaimOffer moves an Open offer to Pending_Approval with the given taker.
	ClaimOffer(ctx context.Context, id, takerID string, at time.Time) (Offer, error)
	// ApproveOffer marks a pending offer Approved and hands its shift to the
	// taker in one transaction.
	ApproveOffer(ctx context.Context, id, decidedBy string, at time.Time) (Offer, error)
	RejectOffer(ctx context.Context, id, decidedBy string, at time.Time) (Offer, error)
	ListOffers(ctx context.Context, filter Filter) ([]Offer, error)
}
