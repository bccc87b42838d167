package memory

import (
	"context"
	"sort"
	"time"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/swap"
)

func (s *Store) UpsertAreas(_ context.Context, areas []roster.Area) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range areas {
		s.areas[a.ID] = a
	}
	return nil
}

func (s *Store) ListAreas(_ context.Context) ([]roster.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]roster.Area, 0, len(s.areas))
	for _, a := range s.areas {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) GetArea(_ context.Context, id string) (roster.Area, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.areas[id]
	if !ok {
		return roster.Area{}, apperr.NotFound("area not found")
	}
	return a, nil
}

func (s *Store) InsertShifts(_ context.Context, shifts []roster.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sh := range shifts {
		if _, ok := s.employees[sh.EmployeeID]; !ok {
			return apperr.NotFound("employee or area not found")
		}
		if _, ok := s.areas[sh.AreaID]; !ok {
			return apperr.NotFound("employee or area not found")
		}
		if _, ok := s.shifts[sh.ID]; ok {
			return apperr.Conflict("shift already exists")
		}
	}
	for _, sh := range shifts {
		sh.EmployeeName = ""
		s.shifts[sh.ID] = sh
	}
	return nil
}

func (s *Store) GetShift(_ context.Context, id string) (roster.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sh, ok := s.shifts[id]
	if !ok {
		return roster.Shift{}, apperr.NotFound("shift not found")
	}
	return s.withName(sh), nil
}

func (s *Store) UpdateShift(_ context.Context, shift roster.Shift, read roster.Shift, releaseOffers bool, decidedBy string) ([]roster.ReleasedOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.shifts[shift.ID]
	if !ok {
		return nil, apperr.NotFound("shift not found")
	}
	if stored.EmployeeID != read.EmployeeID || !stored.UpdatedAt.Equal(read.UpdatedAt) {
		return nil, apperr.Conflict("shift was changed concurrently, reload and retry")
	}
	if _, ok := s.employees[shift.EmployeeID]; !ok {
		return nil, apperr.NotFound("employee or area not found")
	}
	if _, ok := s.areas[shift.AreaID]; !ok {
		return nil, apperr.NotFound("employee or area not found")
	}
	shift.EmployeeName = ""
	s.shifts[shift.ID] = shift
	if !releaseOffers {
		return nil, nil
	}
	return s.releaseOffers(shift.ID, decidedBy, shift.UpdatedAt), nil
}

func (s *Store) DeleteShift(_ context.Context, id, decidedBy string, at time.Time) ([]roster.ReleasedOffer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.shifts[id]; !ok {
		return nil, apperr.NotFound("shift not found")
	}
	released := s.releaseOffers(id, decidedBy, at)
	delete(s.shifts, id)
	return released, nil
}

func (s *Store) releaseOffers(shiftID, decidedBy string, at time.Time) []roster.ReleasedOffer {
	var out []roster.ReleasedOffer
	for id, o := range s.offers {
		if o.ShiftID != shiftID || !swap.CanTransition(o.Status, swap.StatusRejected) {
			continue
		}
		o.Status = swap.StatusRejected
		o.DecidedBy = decidedBy
		o.UpdatedAt = at
		s.offers[id] = o
		out = append(out, roster.ReleasedOffer{OfferID: o.ID, RequesterID: o.RequesterID, TakerID: o.TakerID})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OfferID < out[j].OfferID })
	return out
}

func (s *Store) ListShifts(_ context.Context, filter roster.Filter) ([]roster.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []roster.Shift
	for _, sh := range s.shifts {
		if !filter.From.IsZero() && sh.Start.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !sh.Start.Before(filter.To) {
			continue
		}
		if filter.EmployeeID != "" && sh.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.AreaID != "" && sh.AreaID != filter.AreaID {
			continue
		}
		out = append(out, s.withName(sh))
	}
	sortShifts(out)
	return out, nil
}

func (s *Store) OverlappingShifts(_ context.Context, employeeID string, start, end time.Time) ([]roster.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []roster.Shift
	for _, sh := range s.shifts {
		if sh.EmployeeID == employeeID && sh.Overlaps(start, end) {
			out = append(out, s.withName(sh))
		}
	}
	sortShifts(out)
	return out, nil
}

func (s *Store) CountShifts(_ context.Context, from, to time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	for _, sh := range s.shifts {
		if !sh.Start.Before(from) && sh.Start.Before(to) {
			total++
		}
	}
	return total, nil
}

func (s *Store) withName(sh roster.Shift) roster.Shift {
	sh.EmployeeName = s.employeeName(sh.EmployeeID)
	return sh
}

func sortShifts(shifts []roster.Shift) {
	sort.Slice(shifts, func(i, j int) bool {
		a, b := shifts[i], shifts[j]
		if !a.Start.Equal(b.Start) {
			return a.Start.Before(b.Start)
		}
		if a.EmployeeName != b.EmployeeName {
			return a.EmployeeName < b.EmployeeName
		}
		return a.ID < b.ID
	})
}
