package swap

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/platform/events"
	"shiftdesk/internal/platform/logging"
)

type ShiftReader interface {
	GetShift(ctx context.Context, id string) (roster.Shift, error)
}

type Service struct {
	Store  StoreAPI
	Shifts ShiftReader
	Events events.Publisher
	Now    func() time.Time
	Logger *zap.Logger
}

func NewService(store StoreAPI, shifts ShiftReader, publisher events.Publisher, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{Store: store, Shifts: shifts, Events: publisher, Now: time.Now, Logger: logging.OrNop(logger)}
}

// Offer puts the actor's own shift up for swap.
func (s *Service) Offer(ctx context.Context, actor auth.Actor, shiftID string) (Offer, error) {
	shift, err := s.Shifts.GetShift(ctx, shiftID)
	if err != nil {
		return Offer{}, err
	}
	if shift.EmployeeID != actor.EmployeeID {
		return Offer{}, apperr.PermissionDenied("only the assigned employee can offer a shift")
	}

	now := s.Now().UTC()
	offer := Offer{
		ID:            uuid.NewString(),
		ShiftID:       shift.ID,
		RequesterID:   actor.EmployeeID,
		RequesterName: shift.EmployeeName,
		Status:        StatusOpen,
		ShiftStart:    &shift.Start,
		ShiftEnd:      &shift.End,
		AreaID:        shift.AreaID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.CreateOffer(ctx, offer); err != nil {
		return Offer{}, err
	}
	s.publish(events.SwapOffered, actor, offer, nil)
	s.Logger.Info("swap offered", zap.String("offer_id", offer.ID), zap.String("shift_id", shift.ID))
	return offer, nil
}

// Claim takes an open offer on behalf of the actor; a manager decides next.
func (s *Service) Claim(ctx context.Context, actor auth.Actor, offerID string) (Offer, error) {
	offer, err := s.Store.GetOffer(ctx, offerID)
	if err != nil {
		return Offer{}, err
	}
	if offer.RequesterID == actor.EmployeeID {
		return Offer{}, apperr.PermissionDenied("cannot claim your own offer")
	}
	if offer.Status != StatusOpen {
		return Offer{}, apperr.InvalidState("swap offer is " + offer.Status)
	}
	claimed, err := s.Store.ClaimOffer(ctx, offerID, actor.EmployeeID, s.Now().UTC())
	if err != nil {
		return Offer{}, err
	}
	s.publish(events.SwapClaimed, actor, claimed, []string{claimed.RequesterID})
	return claimed, nil
}

// Approve hands the shift to the taker. The offer and the shift change together or not at all.
func (s *Service) Approve(ctx context.Context, actor auth.Actor, offerID string) (Offer, error) {
	if !actor.CanManage() {
		return Offer{}, apperr.PermissionDenied("only managers can approve swaps")
	}
	approved, err := s.Store.ApproveOffer(ctx, offerID, actor.EmployeeID, s.Now().UTC())
	if err != nil {
		return Offer{}, err
	}
	s.publish(events.SwapApproved, actor, approved, []string{approved.RequesterID, approved.TakerID})
	s.Logger.Info("swap approved",
		zap.String("offer_id", approved.ID),
		zap.String("shift_id", approved.ShiftID),
		zap.String("taker_id", approved.TakerID))
	return approved, nil
}

func (s *Service) Reject(ctx context.Context, actor auth.Actor, offerID string) (Offer, error) {
	if !actor.CanManage() {
		return Offer{}, apperr.PermissionDenied("only managers can reject swaps")
	}
	rejected, err := s.Store.RejectOffer(ctx, offerID, actor.EmployeeID, s.Now().UTC())
	if err != nil {
		return Offer{}, err
	}
	recipients := []string{rejected.RequesterID}
	if rejected.TakerID != "" {
		recipients = append(recipients, rejected.TakerID)
	}
	s.publish(events.SwapRejected, actor, rejected, recipients)
	return rejected, nil
}

// ListClaimable is the swap market: open offers made by somebody else.
func (s *Service) ListClaimable(ctx context.Context, actor auth.Actor) ([]Offer, error) {
	return s.Store.ListOffers(ctx, Filter{Status: StatusOpen, ExcludeRequester: actor.EmployeeID})
}

// ListPending is the manager approval queue.
func (s *Service) ListPending(ctx context.Context, actor auth.Actor) ([]Offer, error) {
	if !actor.CanManage() {
		return nil, apperr.PermissionDenied("only managers can review swaps")
	}
	return s.Store.ListOffers(ctx, Filter{Status: StatusPendingApproval})
}

func (s *Service) ListMine(ctx context.Context, actor auth.Actor) ([]Offer, error) {
	return s.Store.ListOffers(ctx, Filter{RequesterID: actor.EmployeeID})
}

// ActiveForShift returns the shift's non-rejected offer, if any.
func (s *Service) ActiveForShift(ctx context.Context, shiftID string) (Offer, bool, error) {
	offer, err := s.Store.ActiveOfferForShift(ctx, shiftID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return Offer{}, false, nil
	}
	if err != nil {
		return Offer{}, false, err
	}
	return offer, true, nil
}

func (s *Service) publish(eventType string, actor auth.Actor, offer Offer, recipients []string) {
	data := map[string]string{"shiftId": offer.ShiftID, "status": offer.Status}
	if offer.ShiftStart != nil {
		data["start"] = offer.ShiftStart.Format(time.RFC3339)
	}
	if offer.TakerName != "" {
		data["takerName"] = offer.TakerName
	}
	if offer.RequesterName != "" {
		data["requesterName"] = offer.RequesterName
	}
	s.Events.Publish(events.Event{
		Type:       eventType,
		SubjectID:  offer.ID,
		ActorID:    actor.EmployeeID,
		Recipients: recipients,
		Data:       data,
	})
}
