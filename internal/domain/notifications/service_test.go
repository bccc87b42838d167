package notifications_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/notifications"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/platform/events"
	"shiftdesk/internal/storage/memory"
)

type sentMail struct {
	to      string
	subject string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (m *fakeMailer) Send(_ context.Context, _, to, subject, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentMail{to: to, subject: subject})
	return nil
}

func newService(t *testing.T) (*notifications.Service, *fakeMailer) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, e := range []staff.Employee{
		{ID: "anna", FullName: "Anna", Email: "anna@example.com", Role: auth.RoleEmployee},
		{ID: "ben", FullName: "Ben", Email: "ben@example.com", Role: auth.RoleEmployee},
		{ID: "mia", FullName: "Mia", Email: "mia@example.com", Role: auth.RoleManager},
		{ID: "olga", FullName: "Olga", Email: "olga@example.com", Role: auth.RoleOwner},
	} {
		require.NoError(t, store.CreateEmployee(ctx, e, ""))
	}
	mailer := &fakeMailer{}
	svc := notifications.New(store, staff.NewService(store, nil), mailer, "", nil)
	svc.Now = func() time.Time { return time.Date(2024, 5, 6, 12, 0, 0, 0, time.UTC) }
	return svc, mailer
}

func inbox(t *testing.T, svc *notifications.Service, employeeID string) []notifications.Notification {
	t.Helper()
	items, err := svc.List(context.Background(), auth.Actor{EmployeeID: employeeID, Role: auth.RoleEmployee}, 50, 0)
	require.NoError(t, err)
	return items
}

func TestSwapOfferedReachesEveryoneButRequester(t *testing.T) {
	svc, mailer := newService(t)
	err := svc.Handle(context.Background(), events.Event{
		Type:      events.SwapOffered,
		SubjectID: "offer-1",
		ActorID:   "anna",
		Data:      map[string]string{"requesterName": "Anna", "start": "2024-05-07T08:00:00Z"},
	})
	require.NoError(t, err)

	assert.Empty(t, inbox(t, svc, "anna"))
	for _, id := range []string{"ben", "mia", "olga"} {
		items := inbox(t, svc, id)
		require.Len(t, items, 1, id)
		assert.Equal(t, notifications.TypeSwapOffered, items[0].Type)
		assert.Contains(t, items[0].Body, "Tue 07.05. 08:00")
	}
	assert.Len(t, mailer.sent, 3)
}

func TestSwapClaimedNotifiesManagersAndRequester(t *testing.T) {
	svc, _ := newService(t)
	err := svc.Handle(context.Background(), events.Event{
		Type:       events.SwapClaimed,
		ActorID:    "ben",
		Recipients: []string{"anna"},
		Data:       map[string]string{"requesterName": "Anna", "takerName": "Ben"},
	})
	require.NoError(t, err)

	assert.Equal(t, notifications.TypeSwapClaimed, inbox(t, svc, "anna")[0].Type)
	assert.Equal(t, notifications.TypeSwapPending, inbox(t, svc, "mia")[0].Type)
	assert.Equal(t, notifications.TypeSwapPending, inbox(t, svc, "olga")[0].Type)
	assert.Empty(t, inbox(t, svc, "ben"))
}

func TestLeaveEvents(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	data := map[string]string{"employeeName": "Mia", "hours": "8.0", "date": "2024-06-03", "status": "Approved"}

	require.NoError(t, svc.Handle(ctx, events.Event{Type: events.LeaveRequested, ActorID: "mia", Data: data}))
	assert.Empty(t, inbox(t, svc, "mia"))
	require.Len(t, inbox(t, svc, "olga"), 1)

	require.NoError(t, svc.Handle(ctx, events.Event{Type: events.LeaveResolved, ActorID: "olga", Recipients: []string{"mia"}, Data: data}))
	items := inbox(t, svc, "mia")
	require.Len(t, items, 1)
	assert.Equal(t, notifications.TypeLeaveApproved, items[0].Type)
}

func TestMarkRead(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	ben := auth.Actor{EmployeeID: "ben", Role: auth.RoleEmployee}
	anna := auth.Actor{EmployeeID: "anna", Role: auth.RoleEmployee}
	require.NoError(t, svc.Create(ctx, "ben", notifications.TypeShiftAssigned, "New shift", "Monday"))

	unread, err := svc.CountUnread(ctx, ben)
	require.NoError(t, err)
	assert.Equal(t, 1, unread)

	id := inbox(t, svc, "ben")[0].ID
	assert.ErrorIs(t, svc.MarkRead(ctx, anna, id), apperr.ErrNotFound)
	require.NoError(t, svc.MarkRead(ctx, ben, id))

	unread, err = svc.CountUnread(ctx, ben)
	require.NoError(t, err)
	assert.Equal(t, 0, unread)
	assert.NotNil(t, inbox(t, svc, "ben")[0].ReadAt)
}
