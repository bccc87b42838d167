package memory

import (
	"context"
	"sort"
	"time"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/timebank"
)

func (s *Store) OpenTimeEntry(_ context.Context, entry timebank.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[entry.EmployeeID]; !ok {
		return apperr.NotFound("employee not found")
	}
	for _, e := range s.timeEntries {
		if e.EmployeeID == entry.EmployeeID && e.Open() {
			return apperr.Conflict("employee is already clocked in")
		}
	}
	entry.ClockOut = nil
	s.timeEntries[entry.ID] = entry
	return nil
}

func (s *Store) CloseTimeEntry(_ context.Context, employeeID string, at time.Time) (timebank.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open, ok := s.latestOpen(employeeID)
	if !ok {
		return timebank.TimeEntry{}, apperr.NotFound("no open time entry")
	}
	closedAt := at
	open.ClockOut = &closedAt
	s.timeEntries[open.ID] = open
	return open, nil
}

func (s *Store) OpenEntryFor(_ context.Context, employeeID string) (timebank.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	open, ok := s.latestOpen(employeeID)
	if !ok {
		return timebank.TimeEntry{}, apperr.NotFound("no open time entry")
	}
	return open, nil
}

func (s *Store) latestOpen(employeeID string) (timebank.TimeEntry, bool) {
	var latest timebank.TimeEntry
	found := false
	for _, e := range s.timeEntries {
		if e.EmployeeID != employeeID || !e.Open() {
			continue
		}
		if !found || e.ClockIn.After(latest.ClockIn) {
			latest = e
			found = true
		}
	}
	return latest, found
}

func (s *Store) ClosedEntries(_ context.Context, employeeID string, from, to time.Time) ([]timebank.TimeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timebank.TimeEntry
	for _, e := range s.timeEntries {
		if e.EmployeeID != employeeID || e.Open() {
			continue
		}
		if e.ClockIn.Before(from) || !e.ClockIn.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ClockIn.Before(out[j].ClockIn) })
	return out, nil
}

// SeedTimeEntry stores an entry as is; used to load history.
func (s *Store) SeedTimeEntry(entry timebank.TimeEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeEntries[entry.ID] = entry
}

func (s *Store) CreateLeaveRequest(_ context.Context, req timebank.LeaveRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.employees[req.EmployeeID]; !ok {
		return apperr.NotFound("employee not found")
	}
	req.EmployeeName = ""
	s.leave[req.ID] = req
	return nil
}

func (s *Store) GetLeaveRequest(_ context.Context, id string) (timebank.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.leave[id]
	if !ok {
		return timebank.LeaveRequest{}, apperr.NotFound("leave request not found")
	}
	return s.withEmployeeName(req), nil
}

func (s *Store) ListLeaveRequests(_ context.Context, filter timebank.LeaveFilter) ([]timebank.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timebank.LeaveRequest
	for _, req := range s.leave {
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		out = append(out, s.withEmployeeName(req))
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return out, nil
}

func (s *Store) ResolveLeaveRequest(_ context.Context, id, status, decidedBy string, at time.Time) (timebank.LeaveRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	req, ok := s.leave[id]
	if !ok {
		return timebank.LeaveRequest{}, apperr.NotFound("leave request not found")
	}
	if req.Status != timebank.LeavePending {
		return timebank.LeaveRequest{}, apperr.InvalidState("leave request is " + req.Status)
	}
	if status == timebank.LeaveApproved {
		rec, ok := s.employees[req.EmployeeID]
		if !ok {
			return timebank.LeaveRequest{}, apperr.NotFound("employee not found")
		}
		if rec.OvertimeBalance < req.Hours {
			return timebank.LeaveRequest{}, apperr.InsufficientBalance("overtime balance no longer covers this request")
		}
		rec.OvertimeBalance -= req.Hours
	}
	decidedAt := at
	req.Status = status
	req.DecidedBy = decidedBy
	req.DecidedAt = &decidedAt
	s.leave[id] = req
	return s.withEmployeeName(req), nil
}

func (s *Store) AdjustBalance(_ context.Context, adj timebank.Adjustment) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.employees[adj.EmployeeID]
	if !ok {
		return 0, apperr.NotFound("employee not found")
	}
	rec.OvertimeBalance += adj.Delta
	s.adjustments = append(s.adjustments, adj)
	return rec.OvertimeBalance, nil
}

func (s *Store) ListAdjustments(_ context.Context, employeeID string) ([]timebank.Adjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []timebank.Adjustment
	for i := len(s.adjustments) - 1; i >= 0; i-- {
		if s.adjustments[i].EmployeeID == employeeID {
			out = append(out, s.adjustments[i])
		}
	}
	return out, nil
}

func (s *Store) withEmployeeName(req timebank.LeaveRequest) timebank.LeaveRequest {
	req.EmployeeName = s.employeeName(req.EmployeeID)
	return req
}
