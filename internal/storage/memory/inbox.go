package memory

import (
	"context"
	"time"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/audit"
	"shiftdesk/internal/domain/notifications"
)

func (s *Store) CreateNotification(_ context.Context, n notifications.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s *Store) ListNotifications(_ context.Context, employeeID string, limit, offset int) ([]notifications.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var mine []notifications.Notification
	for i := len(s.notifications) - 1; i >= 0; i-- {
		if s.notifications[i].EmployeeID == employeeID {
			mine = append(mine, s.notifications[i])
		}
	}
	return page(mine, limit, offset), nil
}

func (s *Store) CountUnread(_ context.Context, employeeID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total int
	for _, n := range s.notifications {
		if n.EmployeeID == employeeID && n.ReadAt == nil {
			total++
		}
	}
	return total, nil
}

func (s *Store) MarkNotificationRead(_ context.Context, employeeID, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, n := range s.notifications {
		if n.ID != id || n.EmployeeID != employeeID {
			continue
		}
		if n.ReadAt == nil {
			readAt := at
			s.notifications[i].ReadAt = &readAt
		}
		return nil
	}
	return apperr.NotFound("notification not found")
}

func (s *Store) RecordAudit(_ context.Context, evt audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auditEvents = append(s.auditEvents, evt)
	return nil
}

func (s *Store) ListAudit(_ context.Context, filter audit.Filter, limit, offset int) ([]audit.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Event
	for i := len(s.auditEvents) - 1; i >= 0; i-- {
		evt := s.auditEvents[i]
		if filter.Action != "" && evt.Action != filter.Action {
			continue
		}
		if filter.EntityType != "" && evt.EntityType != filter.EntityType {
			continue
		}
		if filter.EntityID != "" && evt.EntityID != filter.EntityID {
			continue
		}
		if filter.ActorID != "" && evt.ActorID != filter.ActorID {
			continue
		}
		out = append(out, evt)
	}
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
