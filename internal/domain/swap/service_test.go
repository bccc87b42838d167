package swap_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/domain/swap"
	"shiftdesk/internal/platform/events"
	"shiftdesk/internal/storage/memory"
)

var (
	anna    = auth.Actor{EmployeeID: "anna", Role: auth.RoleEmployee}
	ben     = auth.Actor{EmployeeID: "ben", Role: auth.RoleEmployee}
	carla   = auth.Actor{EmployeeID: "carla", Role: auth.RoleEmployee}
	manager = auth.Actor{EmployeeID: "mia", Role: auth.RoleManager}
	monday  = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
)

type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) Publish(e events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) last() events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.events) == 0 {
		return events.Event{}
	}
	return r.events[len(r.events)-1]
}

type fixture struct {
	store  *memory.Store
	roster *roster.Service
	swap   *swap.Service
	events *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, e := range []staff.Employee{
		{ID: "anna", FullName: "Anna", Email: "anna@example.com", Role: auth.RoleEmployee},
		{ID: "ben", FullName: "Ben", Email: "ben@example.com", Role: auth.RoleEmployee},
		{ID: "carla", FullName: "Carla", Email: "carla@example.com", Role: auth.RoleEmployee},
		{ID: "mia", FullName: "Mia", Email: "mia@example.com", Role: auth.RoleManager},
	} {
		require.NoError(t, store.CreateEmployee(ctx, e, ""))
	}
	rosterSvc := roster.NewService(store, emptyAvailability{}, staff.NewService(store, nil), nil, time.UTC, nil)
	require.NoError(t, rosterSvc.SyncAreas(ctx, []roster.Area{{ID: "checkout", Name: "Kasse"}}))

	rec := &recorder{}
	svc := swap.NewService(store, rosterSvc, rec, nil)
	svc.Now = func() time.Time { return monday.Add(-24 * time.Hour) }
	return fixture{store: store, roster: rosterSvc, swap: svc, events: rec}
}

type emptyAvailability struct{}

func (emptyAvailability) ForDate(context.Context, time.Time) ([]availability.Entry, error) {
	return nil, nil
}

func (f fixture) shiftFor(t *testing.T, employeeID string, startHour int) roster.Shift {
	t.Helper()
	start := monday.Add(time.Duration(startHour) * time.Hour)
	planned, err := f.roster.CreateShift(context.Background(), manager, roster.ShiftInput{
		EmployeeID: employeeID,
		AreaID:     "checkout",
		Start:      start,
		End:        start.Add(4 * time.Hour),
	})
	require.NoError(t, err)
	return planned.Shift
}

func TestOfferRequiresOwnShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shift := f.shiftFor(t, "anna", 8)

	_, err := f.swap.Offer(ctx, ben, shift.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, err = f.swap.Offer(ctx, anna, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	offer, err := f.swap.Offer(ctx, anna, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusOpen, offer.Status)
	assert.Equal(t, "anna", offer.RequesterID)
	assert.Equal(t, events.SwapOffered, f.events.last().Type)

	_, err = f.swap.Offer(ctx, anna, shift.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestClaimRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shift := f.shiftFor(t, "anna", 8)
	offer, err := f.swap.Offer(ctx, anna, shift.ID)
	require.NoError(t, err)

	_, err = f.swap.Claim(ctx, anna, offer.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	claimed, err := f.swap.Claim(ctx, ben, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusPendingApproval, claimed.Status)
	assert.Equal(t, "ben", claimed.TakerID)
	assert.Equal(t, "Ben", claimed.TakerName)
	assert.Equal(t, []string{"anna"}, f.events.last().Recipients)

	_, err = f.swap.Claim(ctx, carla, offer.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.swap.Claim(ctx, carla, "missing")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestConcurrentClaimsOnlyOneWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shift := f.shiftFor(t, "anna", 8)
	offer, err := f.swap.Offer(ctx, anna, shift.ID)
	require.NoError(t, err)

	takers := []auth.Actor{ben, carla, manager}
	var wg sync.WaitGroup
	results := make([]error, len(takers))
	for i, taker := range takers {
		wg.Add(1)
		go func(i int, taker auth.Actor) {
			defer wg.Done()
			_, results[i] = f.swap.Claim(ctx, taker, offer.ID)
		}(i, taker)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrInvalidState)
	}
	assert.Equal(t, 1, wins)
}

func TestApproveReassignsShift(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shift := f.shiftFor(t, "anna", 8)
	offer, err := f.swap.Offer(ctx, anna, shift.ID)
	require.NoError(t, err)

	_, err = f.swap.Approve(ctx, manager, offer.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, err = f.swap.Claim(ctx, ben, offer.ID)
	require.NoError(t, err)

	_, err = f.swap.Approve(ctx, ben, offer.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	approved, err := f.swap.Approve(ctx, manager, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusApproved, approved.Status)
	assert.Equal(t, "mia", approved.DecidedBy)
	assert.ElementsMatch(t, []string{"anna", "ben"}, f.events.last().Recipients)

	reassigned, err := f.roster.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "ben", reassigned.EmployeeID)

	_, err = f.swap.Approve(ctx, manager, offer.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	// An approved offer still blocks a second offer for the same shift.
	_, err = f.swap.Offer(ctx, ben, shift.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)
}

func TestRejectFreesShiftForNewOffer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shift := f.shiftFor(t, "anna", 8)
	offer, err := f.swap.Offer(ctx, anna, shift.ID)
	require.NoError(t, err)

	_, err = f.swap.Reject(ctx, anna, offer.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	rejected, err := f.swap.Reject(ctx, manager, offer.ID)
	require.NoError(t, err)
	assert.Equal(t, swap.StatusRejected, rejected.Status)

	unchanged, err := f.roster.GetShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.Equal(t, "anna", unchanged.EmployeeID)

	_, err = f.swap.Reject(ctx, manager, offer.ID)
	assert.ErrorIs(t, err, apperr.ErrInvalidState)

	_, found, err := f.swap.ActiveForShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.False(t, found)

	again, err := f.swap.Offer(ctx, anna, shift.ID)
	require.NoError(t, err)
	active, found, err := f.swap.ActiveForShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, again.ID, active.ID)
}

func TestListings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	late := f.shiftFor(t, "anna", 14)
	early := f.shiftFor(t, "anna", 6)
	bens := f.shiftFor(t, "ben", 8)

	lateOffer, err := f.swap.Offer(ctx, anna, late.ID)
	require.NoError(t, err)
	earlyOffer, err := f.swap.Offer(ctx, anna, early.ID)
	require.NoError(t, err)
	benOffer, err := f.swap.Offer(ctx, ben, bens.ID)
	require.NoError(t, err)

	market, err := f.swap.ListClaimable(ctx, ben)
	require.NoError(t, err)
	require.Len(t, market, 2)
	assert.Equal(t, earlyOffer.ID, market[0].ID)
	assert.Equal(t, lateOffer.ID, market[1].ID)

	mine, err := f.swap.ListMine(ctx, ben)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, benOffer.ID, mine[0].ID)

	_, err = f.swap.Claim(ctx, carla, lateOffer.ID)
	require.NoError(t, err)

	_, err = f.swap.ListPending(ctx, carla)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)
	pending, err := f.swap.ListPending(ctx, manager)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, lateOffer.ID, pending[0].ID)
	assert.Equal(t, "Carla", pending[0].TakerName)

	market, err = f.swap.ListClaimable(ctx, carla)
	require.NoError(t, err)
	assert.Len(t, market, 2)
}

func TestOfferFailsWhenShiftReassignedMeanwhile(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	shift := f.shiftFor(t, "anna", 8)

	carlaID := "carla"
	f.swap.Shifts = &afterShiftRead{ShiftReader: f.roster, hook: func() {
		_, err := f.roster.UpdateShift(ctx, manager, shift.ID, roster.ShiftUpdate{EmployeeID: &carlaID})
		require.NoError(t, err)
	}}
	_, err := f.swap.Offer(ctx, anna, shift.ID)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	_, found, err := f.swap.ActiveForShift(ctx, shift.ID)
	require.NoError(t, err)
	assert.False(t, found)
	market, err := f.swap.ListClaimable(ctx, carla)
	require.NoError(t, err)
	assert.Empty(t, market)
}
