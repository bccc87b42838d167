package notifications

import (
	"context"
	"time"
)

type StoreAPI interface {
	CreateNotification(ctx context.Context, n Notification) error
	ListNotifications(ctx context.Context, employeeID string, limit, offset int) ([]Notification, error)
	CountUnread(ctx context.Context, employeeID string) (int, error)
	MarkNotificationRead(ctx context.Context, employeeID, id string, at time.Time) error
}
