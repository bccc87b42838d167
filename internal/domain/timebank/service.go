package timebank

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/platform/dates"
	"shiftdesk/internal/platform/events"
	"shiftdesk/internal/platform/logging"
)

const DefaultLeaveHours = 8.0

type EmployeeReader interface {
	Get(ctx context.Context, id string) (staff.Employee, error)
}

type Service struct {
	Store              StoreAPI
	Staff              EmployeeReader
	Events             events.Publisher
	StandardLeaveHours float64
	Location           *time.Location
	Now                func() time.Time
	Logger             *zap.Logger
}

func NewService(store StoreAPI, employees EmployeeReader, publisher events.Publisher, standardLeaveHours float64, loc *time.Location, logger *zap.Logger) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if standardLeaveHours <= 0 {
		standardLeaveHours = DefaultLeaveHours
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		Store:              store,
		Staff:              employees,
		Events:             publisher,
		StandardLeaveHours: standardLeaveHours,
		Location:           loc,
		Now:                time.Now,
		Logger:             logging.OrNop(logger),
	}
}

// ClockIn opens a time entry. Only one entry per employee may be open.
func (s *Service) ClockIn(ctx context.Context, actor auth.Actor) (TimeEntry, error) {
	entry := TimeEntry{ID: uuid.NewString(), EmployeeID: actor.EmployeeID, ClockIn: s.Now().UTC()}
	if err := s.Store.OpenTimeEntry(ctx, entry); err != nil {
		return TimeEntry{}, err
	}
	s.Logger.Info("clocked in", zap.String("employee_id", actor.EmployeeID), zap.String("entry_id", entry.ID))
	return entry, nil
}

func (s *Service) ClockOut(ctx context.Context, actor auth.Actor) (TimeEntry, error) {
	entry, err := s.Store.CloseTimeEntry(ctx, actor.EmployeeID, s.Now().UTC())
	if err != nil {
		return TimeEntry{}, err
	}
	s.Logger.Info("clocked out", zap.String("employee_id", actor.EmployeeID), zap.String("entry_id", entry.ID), zap.Float64("hours", entry.Hours()))
	return entry, nil
}

// Current returns the actor's open entry, if any.
func (s *Service) Current(ctx context.Context, actor auth.Actor) (TimeEntry, bool, error) {
	entry, err := s.Store.OpenEntryFor(ctx, actor.EmployeeID)
	if apperr.KindOf(err) == apperr.KindNotFound {
		return TimeEntry{}, false, nil
	}
	if err != nil {
		return TimeEntry{}, false, err
	}
	return entry, true, nil
}

// MonthlyWorkedHours sums the employee's closed entries clocked in during the
// month containing month, rounded to whole hours.
func (s *Service) MonthlyWorkedHours(ctx context.Context, actor auth.Actor, employeeID string, month time.Time) (float64, error) {
	if !actor.Acts(employeeID) {
		return 0, apperr.PermissionDenied("cannot view another employee's hours")
	}
	from, to := s.monthBounds(month)
	entries, err := s.Store.ClosedEntries(ctx, employeeID, from, to)
	if err != nil {
		return 0, err
	}
	return WorkedHours(entries, from, to), nil
}

func (s *Service) MonthlySummary(ctx context.Context, actor auth.Actor, employeeID string, month time.Time) (MonthSummary, error) {
	worked, err := s.MonthlyWorkedHours(ctx, actor, employeeID, month)
	if err != nil {
		return MonthSummary{}, err
	}
	emp, err := s.Staff.Get(ctx, employeeID)
	if err != nil {
		return MonthSummary{}, err
	}
	from, _ := s.monthBounds(month)
	return MonthSummary{
		EmployeeID:      employeeID,
		Month:           dates.Of(from, s.Location),
		WorkedHours:     worked,
		ContractedHours: emp.MonthlyHours,
		Difference:      worked - emp.MonthlyHours,
		OvertimeBalance: emp.OvertimeBalance,
	}, nil
}

// Entries lists closed entries of the month for timesheets.
func (s *Service) Entries(ctx context.Context, actor auth.Actor, employeeID string, month time.Time) ([]TimeEntry, error) {
	if !actor.Acts(employeeID) {
		return nil, apperr.PermissionDenied("cannot view another employee's time entries")
	}
	from, to := s.monthBounds(month)
	return s.Store.ClosedEntries(ctx, employeeID, from, to)
}

// RequestLeave redeems overtime for a day off. Hours default to the standard day.
func (s *Service) RequestLeave(ctx context.Context, actor auth.Actor, date time.Time, hours *float64) (LeaveRequest, error) {
	requested := s.StandardLeaveHours
	if hours != nil {
		requested = *hours
	}
	if requested <= 0 {
		return LeaveRequest{}, apperr.InvalidRange("leave hours must be positive")
	}
	emp, err := s.Staff.Get(ctx, actor.EmployeeID)
	if err != nil {
		return LeaveRequest{}, err
	}
	if emp.OvertimeBalance < requested {
		return LeaveRequest{}, apperr.InsufficientBalance(fmt.Sprintf("balance of %.1fh does not cover %.1fh", emp.OvertimeBalance, requested))
	}

	req := LeaveRequest{
		ID:           uuid.NewString(),
		EmployeeID:   emp.ID,
		EmployeeName: emp.FullName,
		Date:         dates.Of(date, time.UTC),
		Hours:        requested,
		Status:       LeavePending,
		CreatedAt:    s.Now().UTC(),
	}
	if err := s.Store.CreateLeaveRequest(ctx, req); err != nil {
		return LeaveRequest{}, err
	}
	s.Events.Publish(events.Event{
		Type:      events.LeaveRequested,
		SubjectID: req.ID,
		ActorID:   actor.EmployeeID,
		Data:      leaveData(req),
	})
	return req, nil
}

// ResolveLeave approves or rejects a pending request. Approval debits the
// balance in the same unit as the status change.
func (s *Service) ResolveLeave(ctx context.Context, actor auth.Actor, requestID string, approved bool) (LeaveRequest, error) {
	if !actor.CanManage() {
		return LeaveRequest{}, apperr.PermissionDenied("only managers can decide leave requests")
	}
	status := LeaveRejected
	if approved {
		status = LeaveApproved
	}
	req, err := s.Store.ResolveLeaveRequest(ctx, requestID, status, actor.EmployeeID, s.Now().UTC())
	if err != nil {
		return LeaveRequest{}, err
	}
	s.Events.Publish(events.Event{
		Type:       events.LeaveResolved,
		SubjectID:  req.ID,
		ActorID:    actor.EmployeeID,
		Recipients: []string{req.EmployeeID},
		Data:       leaveData(req),
	})
	s.Logger.Info("leave resolved", zap.String("request_id", req.ID), zap.String("status", req.Status), zap.Float64("hours", req.Hours))
	return req, nil
}

// ListLeave returns the actor's own requests, or the pending queue for managers.
func (s *Service) ListLeave(ctx context.Context, actor auth.Actor, queue bool) ([]LeaveRequest, error) {
	if queue {
		if !actor.CanManage() {
			return nil, apperr.PermissionDenied("only managers can view the leave queue")
		}
		return s.Store.ListLeaveRequests(ctx, LeaveFilter{Status: LeavePending})
	}
	return s.Store.ListLeaveRequests(ctx, LeaveFilter{EmployeeID: actor.EmployeeID})
}

// AdjustBalance credits or debits overtime hours with a journal entry.
func (s *Service) AdjustBalance(ctx context.Context, actor auth.Actor, employeeID string, delta float64, reason string) (float64, error) {
	if !actor.CanManage() {
		return 0, apperr.PermissionDenied("only managers can adjust balances")
	}
	reason = strings.TrimSpace(reason)
	if delta == 0 {
		return 0, apperr.InvalidRange("delta must not be zero")
	}
	if reason == "" {
		return 0, apperr.InvalidRange("reason is required")
	}
	adj := Adjustment{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Delta:      delta,
		Reason:     reason,
		ActorID:    actor.EmployeeID,
		CreatedAt:  s.Now().UTC(),
	}
	balance, err := s.Store.AdjustBalance(ctx, adj)
	if err != nil {
		return 0, err
	}
	s.Events.Publish(events.Event{
		Type:       events.BalanceAdjusted,
		SubjectID:  adj.ID,
		ActorID:    actor.EmployeeID,
		Recipients: []string{employeeID},
		Data: map[string]string{
			"delta":   fmt.Sprintf("%.2f", delta),
			"balance": fmt.Sprintf("%.2f", balance),
			"reason":  reason,
		},
	})
	return balance, nil
}

func (s *Service) Adjustments(ctx context.Context, actor auth.Actor, employeeID string) ([]Adjustment, error) {
	if !actor.Acts(employeeID) {
		return nil, apperr.PermissionDenied("cannot view another employee's adjustments")
	}
	return s.Store.ListAdjustments(ctx, employeeID)
}

func (s *Service) monthBounds(month time.Time) (time.Time, time.Time) {
	var from time.Time
	if month.IsZero() {
		from = dates.MonthStart(s.Now(), s.Location)
	} else {
		from = time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, s.Location)
	}
	return from, from.AddDate(0, 1, 0)
}

func leaveData(req LeaveRequest) map[string]string {
	return map[string]string{
		"employeeId":   req.EmployeeID,
		"employeeName": req.EmployeeName,
		"date":         dates.Format(req.Date),
		"hours":        fmt.Sprintf("%.1f", req.Hours),
		"status":       req.Status,
	}
}
