package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/platform/events"
	"shiftdesk/internal/platform/logging"
)

type Mailer interface {
	Send(ctx context.Context, from, to, subject, body string) error
}

type Directory interface {
	Get(ctx context.Context, id string) (staff.Employee, error)
	List(ctx context.Context) ([]staff.Employee, error)
}

type Service struct {
	store       StoreAPI
	Staff       Directory
	Mailer      Mailer
	DefaultFrom string
	Now         func() time.Time
	Logger      *zap.Logger
}

func New(store StoreAPI, dir Directory, mailer Mailer, from string, logger *zap.Logger) *Service {
	if from == "" {
		from = "no-reply@example.com"
	}
	return &Service{store: store, Staff: dir, Mailer: mailer, DefaultFrom: from, Now: time.Now, Logger: logging.OrNop(logger)}
}

// Subscribe registers the inbox on every event type it renders.
func (s *Service) Subscribe(bus *events.Bus) {
	for _, eventType := range []string{
		events.SwapOffered, events.SwapClaimed, events.SwapApproved, events.SwapRejected,
		events.LeaveRequested, events.LeaveResolved,
		events.ShiftAssigned, events.ShiftRemoved, events.BalanceAdjusted,
	} {
		bus.Subscribe(eventType, s.Handle)
	}
}

// Handle writes one inbox row per recipient of e.
func (s *Service) Handle(ctx context.Context, e events.Event) error {
	deliveries, err := s.route(ctx, e)
	if err != nil {
		return err
	}
	for employeeID, msg := range deliveries {
		if employeeID == "" {
			continue
		}
		if err := s.Create(ctx, employeeID, msg.ntype, msg.title, msg.body); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) Create(ctx context.Context, employeeID, ntype, title, body string) error {
	n := Notification{
		ID:         uuid.NewString(),
		EmployeeID: employeeID,
		Type:       ntype,
		Title:      title,
		Body:       body,
		CreatedAt:  s.Now().UTC(),
	}
	if err := s.store.CreateNotification(ctx, n); err != nil {
		return err
	}

	if s.Mailer == nil || s.Staff == nil {
		return nil
	}
	emp, err := s.Staff.Get(ctx, employeeID)
	if err != nil {
		s.Logger.Warn("notification email lookup failed", zap.String("employee_id", employeeID), zap.Error(err))
		return nil
	}
	if emp.Email == "" {
		return nil
	}
	if err := s.Mailer.Send(ctx, s.DefaultFrom, emp.Email, title, body); err != nil {
		s.Logger.Warn("notification email send failed", zap.String("employee_id", employeeID), zap.Error(err))
	}
	return nil
}

func (s *Service) List(ctx context.Context, actor auth.Actor, limit, offset int) ([]Notification, error) {
	return s.store.ListNotifications(ctx, actor.EmployeeID, limit, offset)
}

func (s *Service) CountUnread(ctx context.Context, actor auth.Actor) (int, error) {
	return s.store.CountUnread(ctx, actor.EmployeeID)
}

func (s *Service) MarkRead(ctx context.Context, actor auth.Actor, notificationID string) error {
	return s.store.MarkNotificationRead(ctx, actor.EmployeeID, notificationID, s.Now().UTC())
}

func (s *Service) route(ctx context.Context, e events.Event) (map[string]message, error) {
	out := map[string]message{}
	when := e.Data["start"]
	if parsed, err := time.Parse(time.RFC3339, when); err == nil {
		when = parsed.Format("Mon 02.01. 15:04")
	}

	switch e.Type {
	case events.SwapOffered:
		others, err := s.everyoneBut(ctx, e.ActorID)
		if err != nil {
			return nil, err
		}
		for _, id := range others {
			out[id] = message{TypeSwapOffered, "New shift in the swap market", fmt.Sprintf("%s offers the shift on %s.", e.Data["requesterName"], when)}
		}
	case events.SwapClaimed:
		managers, err := s.managers(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range managers {
			out[id] = message{TypeSwapPending, "Swap awaiting approval", fmt.Sprintf("%s wants to take over the shift on %s from %s.", e.Data["takerName"], when, e.Data["requesterName"])}
		}
		for _, id := range e.Recipients {
			out[id] = message{TypeSwapClaimed, "Your shift was claimed", fmt.Sprintf("%s claimed your shift on %s. A manager will decide.", e.Data["takerName"], when)}
		}
	case events.SwapApproved:
		for _, id := range e.Recipients {
			out[id] = message{TypeSwapApproved, "Shift swap approved", fmt.Sprintf("The swap for the shift on %s was approved.", when)}
		}
	case events.SwapRejected:
		body := fmt.Sprintf("The swap for the shift on %s was rejected.", when)
		if reason := e.Data["reason"]; reason != "" {
			body = fmt.Sprintf("The swap for the shift on %s was withdrawn: %s.", when, reason)
		}
		for _, id := range e.Recipients {
			out[id] = message{TypeSwapRejected, "Shift swap rejected", body}
		}
	case events.LeaveRequested:
		managers, err := s.managers(ctx)
		if err != nil {
			return nil, err
		}
		for _, id := range managers {
			if id == e.ActorID {
				continue
			}
			out[id] = message{TypeLeaveSubmitted, "Time off requested", fmt.Sprintf("%s requests %sh off on %s.", e.Data["employeeName"], e.Data["hours"], e.Data["date"])}
		}
	case events.LeaveResolved:
		ntype, title := TypeLeaveRejected, "Time off rejected"
		if e.Data["status"] == "Approved" {
			ntype, title = TypeLeaveApproved, "Time off approved"
		}
		for _, id := range e.Recipients {
			out[id] = message{ntype, title, fmt.Sprintf("Your request for %sh on %s was %s.", e.Data["hours"], e.Data["date"], e.Data["status"])}
		}
	case events.ShiftAssigned:
		for _, id := range e.Recipients {
			out[id] = message{TypeShiftAssigned, "New shift", fmt.Sprintf("You were scheduled for %s.", when)}
		}
	case events.ShiftRemoved:
		for _, id := range e.Recipients {
			out[id] = message{TypeShiftRemoved, "Shift removed", fmt.Sprintf("Your shift on %s was removed.", when)}
		}
	case events.BalanceAdjusted:
		for _, id := range e.Recipients {
			out[id] = message{TypeBalanceAdjusted, "Overtime balance changed", fmt.Sprintf("Adjusted by %sh (%s). New balance: %sh.", e.Data["delta"], e.Data["reason"], e.Data["balance"])}
		}
	}
	return out, nil
}

func (s *Service) managers(ctx context.Context) ([]string, error) {
	if s.Staff == nil {
		return nil, nil
	}
	employees, err := s.Staff.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, emp := range employees {
		if emp.Role == auth.RoleManager || emp.Role == auth.RoleOwner {
			out = append(out, emp.ID)
		}
	}
	return out, nil
}

func (s *Service) everyoneBut(ctx context.Context, employeeID string) ([]string, error) {
	if s.Staff == nil {
		return nil, nil
	}
	employees, err := s.Staff.List(ctx)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, emp := range employees {
		if emp.ID != employeeID {
			out = append(out, emp.ID)
		}
	}
	return out, nil
}
