package memory

import (
	"context"
	"sort"
	"time"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/swap"
)

func (s *Store) CreateOffer(_ context.Context, offer swap.Offer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	shift, ok := s.shifts[offer.ShiftID]
	if !ok {
		return apperr.NotFound("shift not found")
	}
	if shift.EmployeeID != offer.RequesterID {
		return apperr.PermissionDenied("only the assigned employee can offer a shift")
	}
	for _, o := range s.offers {
		if o.ShiftID == offer.ShiftID && o.Active() {
			return apperr.Conflict("shift already has an active swap offer")
		}
	}
	s.offers[offer.ID] = stripOffer(offer)
	return nil
}

func (s *Store) GetOffer(_ context.Context, id string) (swap.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.offers[id]
	if !ok {
		return swap.Offer{}, apperr.NotFound("swap offer not found")
	}
	return s.hydrate(o), nil
}

func (s *Store) ActiveOfferForShift(_ context.Context, shiftID string) (swap.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.offers {
		if o.ShiftID == shiftID && o.Active() {
			return s.hydrate(o), nil
		}
	}
	return swap.Offer{}, apperr.NotFound("shift has no active swap offer")
}

func (s *Store) ClaimOffer(_ context.Context, id, takerID string, at time.Time) (swap.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.transition(id, swap.StatusPendingApproval)
	if err != nil {
		return swap.Offer{}, err
	}
	o.TakerID = takerID
	o.UpdatedAt = at
	s.offers[id] = o
	return s.hydrate(o), nil
}

func (s *Store) ApproveOffer(_ context.Context, id, decidedBy string, at time.Time) (swap.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.transition(id, swap.StatusApproved)
	if err != nil {
		return swap.Offer{}, err
	}
	sh, ok := s.shifts[o.ShiftID]
	if !ok {
		return swap.Offer{}, apperr.NotFound("shift no longer exists")
	}

	sh.EmployeeID = o.TakerID
	sh.UpdatedAt = at
	o.DecidedBy = decidedBy
	o.UpdatedAt = at
	s.shifts[sh.ID] = sh
	s.offers[id] = o
	return s.hydrate(o), nil
}

func (s *Store) RejectOffer(_ context.Context, id, decidedBy string, at time.Time) (swap.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.transition(id, swap.StatusRejected)
	if err != nil {
		return swap.Offer{}, err
	}
	o.DecidedBy = decidedBy
	o.UpdatedAt = at
	s.offers[id] = o
	return s.hydrate(o), nil
}

func (s *Store) ListOffers(_ context.Context, filter swap.Filter) ([]swap.Offer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []swap.Offer
	for _, o := range s.offers {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.ExcludeRequester != "" && o.RequesterID == filter.ExcludeRequester {
			continue
		}
		if filter.RequesterID != "" && o.RequesterID != filter.RequesterID {
			continue
		}
		out = append(out, s.hydrate(o))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.ShiftStart != nil && b.ShiftStart != nil && !a.ShiftStart.Equal(*b.ShiftStart):
			return a.ShiftStart.Before(*b.ShiftStart)
		case a.ShiftStart != nil && b.ShiftStart == nil:
			return true
		case a.ShiftStart == nil && b.ShiftStart != nil:
			return false
		case !a.CreatedAt.Equal(b.CreatedAt):
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

// transition returns a copy of the offer moved to target, or the error the
// conditional write would have produced.
func (s *Store) transition(id, target string) (swap.Offer, error) {
	o, ok := s.offers[id]
	if !ok {
		return swap.Offer{}, apperr.NotFound("swap offer not found")
	}
	if !swap.CanTransition(o.Status, target) {
		return swap.Offer{}, apperr.InvalidState("swap offer is " + o.Status)
	}
	o.Status = target
	return o, nil
}

func (s *Store) hydrate(o swap.Offer) swap.Offer {
	o.RequesterName = s.employeeName(o.RequesterID)
	o.TakerName = s.employeeName(o.TakerID)
	if sh, ok := s.shifts[o.ShiftID]; ok {
		start, end := sh.Start, sh.End
		o.ShiftStart = &start
		o.ShiftEnd = &end
		o.AreaID = sh.AreaID
	}
	return o
}

func stripOffer(o swap.Offer) swap.Offer {
	o.RequesterName = ""
	o.TakerName = ""
	o.ShiftStart = nil
	o.ShiftEnd = nil
	o.AreaID = ""
	return o
}
