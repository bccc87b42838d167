package memory

import (
	"context"
	"sort"
	"time"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/platform/dates"
)

func (s *Store) ApplyAvailability(_ context.Context, employeeID string, date time.Time, fn availability.ApplyFunc) (availability.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[employeeID]; !ok {
		return availability.Entry{}, apperr.NotFound("employee not found")
	}

	key := availabilityKey{employeeID: employeeID, date: dates.Format(date)}
	current, ok := s.availability[key]
	if !ok {
		current = availability.Entry{EmployeeID: employeeID, Date: date, Status: availability.StatusNeutral}
	}
	next, err := fn(current)
	if err != nil {
		return availability.Entry{}, err
	}
	next.EmployeeID = employeeID
	next.Date = date
	if next.Status == availability.StatusNeutral {
		delete(s.availability, key)
		return next, nil
	}
	s.availability[key] = next
	return next, nil
}

func (s *Store) AvailabilityForDate(_ context.Context, date time.Time) ([]availability.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	day := dates.Format(date)
	var out []availability.Entry
	for key, e := range s.availability {
		if key.date == day {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (s *Store) AvailabilityForEmployee(_ context.Context, employeeID string, from, to time.Time) ([]availability.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []availability.Entry
	for key, e := range s.availability {
		if key.employeeID != employeeID {
			continue
		}
		if e.Date.Before(from) || !e.Date.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}

func (s *Store) PruneAvailability(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, e := range s.availability {
		if e.Date.Before(before) {
			delete(s.availability, key)
			removed++
		}
	}
	return removed, nil
}
