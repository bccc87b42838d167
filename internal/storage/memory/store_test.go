package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/domain/swap"
	"shiftdesk/internal/domain/timebank"
)

var t0 = time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC)

func seeded(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()
	s := New()
	require.NoError(t, s.CreateEmployee(ctx, staff.Employee{ID: "anna", FullName: "Anna", Email: "anna@example.com", Role: "Employee"}, "hash"))
	require.NoError(t, s.CreateEmployee(ctx, staff.Employee{ID: "ben", FullName: "Ben", Email: "ben@example.com", Role: "Employee"}, "hash"))
	require.NoError(t, s.UpsertAreas(ctx, []roster.Area{{ID: "checkout", Name: "Kasse"}}))
	require.NoError(t, s.InsertShifts(ctx, []roster.Shift{{ID: "s1", EmployeeID: "anna", AreaID: "checkout", Start: t0, End: t0.Add(8 * time.Hour)}}))
	return s
}

func TestApproveLeavesStateUntouchedWhenShiftIsGone(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.CreateOffer(ctx, swap.Offer{ID: "o1", ShiftID: "s1", RequesterID: "anna", Status: swap.StatusOpen}))
	_, err := s.ClaimOffer(ctx, "o1", "ben", t0)
	require.NoError(t, err)

	s.mu.Lock()
	delete(s.shifts, "s1")
	s.mu.Unlock()

	_, err = s.ApproveOffer(ctx, "o1", "boss", t0)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	offer, err := s.GetOffer(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, swap.StatusPendingApproval, offer.Status)
	assert.Empty(t, offer.DecidedBy)
}

func TestCreateOfferConflictsWhileActive(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.CreateOffer(ctx, swap.Offer{ID: "o1", ShiftID: "s1", RequesterID: "anna", Status: swap.StatusOpen}))

	err := s.CreateOffer(ctx, swap.Offer{ID: "o2", ShiftID: "s1", RequesterID: "anna", Status: swap.StatusOpen})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = s.RejectOffer(ctx, "o1", "boss", t0)
	require.NoError(t, err)
	assert.NoError(t, s.CreateOffer(ctx, swap.Offer{ID: "o2", ShiftID: "s1", RequesterID: "anna", Status: swap.StatusOpen}))
}

func TestConcurrentClaimsHaveOneWinner(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.CreateOffer(ctx, swap.Offer{ID: "o1", ShiftID: "s1", RequesterID: "anna", Status: swap.StatusOpen}))

	var wg sync.WaitGroup
	results := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.ClaimOffer(ctx, "o1", "ben", t0)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, invalid int
	for err := range results {
		switch {
		case err == nil:
			ok++
		case apperr.KindOf(err) == apperr.KindInvalidState:
			invalid++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 9, invalid)
}

func TestResolveLeaveRefusesOverdraw(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	_, err := s.AdjustBalance(ctx, timebank.Adjustment{ID: "a1", EmployeeID: "anna", Delta: 8})
	require.NoError(t, err)
	require.NoError(t, s.CreateLeaveRequest(ctx, timebank.LeaveRequest{ID: "l1", EmployeeID: "anna", Hours: 8, Status: timebank.LeavePending}))
	require.NoError(t, s.CreateLeaveRequest(ctx, timebank.LeaveRequest{ID: "l2", EmployeeID: "anna", Hours: 8, Status: timebank.LeavePending}))

	_, err = s.ResolveLeaveRequest(ctx, "l1", timebank.LeaveApproved, "boss", t0)
	require.NoError(t, err)
	_, err = s.ResolveLeaveRequest(ctx, "l2", timebank.LeaveApproved, "boss", t0)
	assert.ErrorIs(t, err, apperr.ErrInsufficientBalance)

	pending, err := s.GetLeaveRequest(ctx, "l2")
	require.NoError(t, err)
	assert.Equal(t, timebank.LeavePending, pending.Status)

	emp, err := s.GetEmployee(ctx, "anna")
	require.NoError(t, err)
	assert.Equal(t, 0.0, emp.OvertimeBalance)
}

func TestApplyAvailabilityUnknownEmployee(t *testing.T) {
	s := seeded(t)
	_, err := s.ApplyAvailability(context.Background(), "ghost", t0, func(cur availability.Entry) (availability.Entry, error) {
		return cur, nil
	})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestListShiftsOrdersByStartThenName(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	require.NoError(t, s.InsertShifts(ctx, []roster.Shift{
		{ID: "s0", EmployeeID: "ben", AreaID: "checkout", Start: t0, End: t0.Add(time.Hour)},
		{ID: "s2", EmployeeID: "anna", AreaID: "checkout", Start: t0.Add(-time.Hour), End: t0},
	}))
	shifts, err := s.ListShifts(ctx, roster.Filter{})
	require.NoError(t, err)
	ids := make([]string, 0, len(shifts))
	for _, sh := range shifts {
		ids = append(ids, sh.ID)
	}
	assert.Equal(t, []string{"s2", "s1", "s0"}, ids)
}

func TestPage(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	assert.Equal(t, []int{3, 4}, page(items, 2, 2))
	assert.Nil(t, page(items, 2, 9))
	assert.Equal(t, items, page(items, 0, 0))
}

func TestUpdateShiftRejectsStaleRead(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)
	read, err := s.GetShift(ctx, "s1")
	require.NoError(t, err)

	require.NoError(t, s.CreateOffer(ctx, swap.Offer{ID: "o1", ShiftID: "s1", RequesterID: "anna", Status: swap.StatusOpen}))
	_, err = s.ClaimOffer(ctx, "o1", "ben", t0)
	require.NoError(t, err)
	_, err = s.ApproveOffer(ctx, "o1", "boss", t0.Add(time.Minute))
	require.NoError(t, err)

	edit := read
	edit.End = read.End.Add(time.Hour)
	_, err = s.UpdateShift(ctx, edit, read, false, "boss")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	current, err := s.GetShift(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "ben", current.EmployeeID)

	edit = current
	edit.End = current.End.Add(time.Hour)
	_, err = s.UpdateShift(ctx, edit, current, false, "boss")
	require.NoError(t, err)

	_, err = s.UpdateShift(ctx, roster.Shift{ID: "missing"}, roster.Shift{}, false, "boss")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCreateOfferRequiresCurrentOwner(t *testing.T) {
	ctx := context.Background()
	s := seeded(t)

	err := s.CreateOffer(ctx, swap.Offer{ID: "o1", ShiftID: "s1", RequesterID: "ben", Status: swap.StatusOpen})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	err = s.CreateOffer(ctx, swap.Offer{ID: "o2", ShiftID: "missing", RequesterID: "anna", Status: swap.StatusOpen})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	assert.Empty(t, s.offers)
}
