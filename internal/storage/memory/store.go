// Package memory is a process-local implementation of every domain store.
// A single mutex guards all state, so each method is atomic.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/domain/notifications"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/domain/swap"
	"shiftdesk/internal/domain/timebank"
	"shiftdesk/internal/platform/jobs"
)

var (
	_ staff.StoreAPI         = (*Store)(nil)
	_ auth.StoreAPI          = (*Store)(nil)
	_ availability.StoreAPI  = (*Store)(nil)
	_ roster.StoreAPI        = (*Store)(nil)
	_ swap.StoreAPI          = (*Store)(nil)
	_ timebank.StoreAPI      = (*Store)(nil)
	_ notifications.StoreAPI = (*Store)(nil)
	_ audit.StoreAPI         = (*Store)(nil)
)

type employeeRecord struct {
	staff.Employee
	passwordHash string
}

type availabilityKey struct {
	employeeID string
	date       string
}

type Store struct {
	mu            sync.Mutex
	employees     map[string]*employeeRecord
	availability  map[availabilityKey]availability.Entry
	areas         map[string]roster.Area
	shifts        map[string]roster.Shift
	offers        map[string]swap.Offer
	timeEntries   map[string]timebank.TimeEntry
	leave         map[string]timebank.LeaveRequest
	adjustments   []timebank.Adjustment
	notifications []notifications.Notification
	auditEvents   []audit.Event
	jobRuns       map[string]jobs.Run
}

func New() *Store {
	return &Store{
		employees:    map[string]*employeeRecord{},
		availability: map[availabilityKey]availability.Entry{},
		areas:        map[string]roster.Area{},
		shifts:       map[string]roster.Shift{},
		offers:       map[string]swap.Offer{},
		timeEntries:  map[string]timebank.TimeEntry{},
		leave:        map[string]timebank.LeaveRequest{},
		jobRuns:      map[string]jobs.Run{},
	}
}

func (s *Store) GetEmployee(_ context.Context, id string) (staff.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.employees[id]
	if !ok {
		return staff.Employee{}, apperr.NotFound("employee not found")
	}
	return rec.Employee, nil
}

func (s *Store) ListEmployees(_ context.Context) ([]staff.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]staff.Employee, 0, len(s.employees))
	for _, rec := range s.employees {
		out = append(out, rec.Employee)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FullName != out[j].FullName {
			return out[i].FullName < out[j].FullName
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateEmployee(_ context.Context, emp staff.Employee, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.employees {
		if strings.EqualFold(rec.Email, emp.Email) {
			return apperr.Conflict("email already registered")
		}
	}
	if _, ok := s.employees[emp.ID]; ok {
		return apperr.Conflict("employee already exists")
	}
	s.employees[emp.ID] = &employeeRecord{Employee: emp, passwordHash: passwordHash}
	return nil
}

func (s *Store) FindCredential(_ context.Context, email string) (auth.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	email = strings.TrimSpace(email)
	for _, rec := range s.employees {
		if strings.EqualFold(rec.Email, email) {
			return auth.Credential{EmployeeID: rec.ID, Email: rec.Email, Role: rec.Role, PasswordHash: rec.passwordHash}, nil
		}
	}
	return auth.Credential{}, apperr.NotFound("credential not found")
}

func (s *Store) employeeName(id string) string {
	if rec, ok := s.employees[id]; ok {
		return rec.FullName
	}
	return ""
}
