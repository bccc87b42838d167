package notifications

import (
	"context"
	"fmt"
	"time"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/querier"
)

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateNotification(ctx context.Context, n Notification) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO notifications (id, employee_id, type, title, body, created_at)
    VALUES ($1,$2,$3,$4,$5,$6)
  `, n.ID, n.EmployeeID, n.Type, n.Title, n.Body, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("create notification: %w", err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, type, title, body, read_at, created_at
    FROM notifications
    WHERE employee_id = $1
    ORDER BY created_at DESC, id
    LIMIT $2 OFFSET $3
  `, employeeID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var out []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.EmployeeID, &n.Type, &n.Title, &n.Body, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) CountUnread(ctx context.Context, employeeID string) (int, error) {
	var total int
	if err := s.DB.QueryRow(ctx, "SELECT COUNT(1) FROM notifications WHERE employee_id = $1 AND read_at IS NULL", employeeID).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, employeeID, id string, at time.Time) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE notifications SET read_at = COALESCE(read_at, $3)
    WHERE employee_id = $1 AND id = $2
  `, employeeID, id, at)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("notification not found")
	}
	return nil
}
