package availability_test

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
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/platform/crypto"
	"shiftdesk/internal/storage/memory"
)

var (
	anna    = auth.Actor{EmployeeID: "anna", Role: auth.RoleEmployee}
	ben     = auth.Actor{EmployeeID: "ben", Role: auth.RoleEmployee}
	manager = auth.Actor{EmployeeID: "mia", Role: auth.RoleManager}
	day     = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (*availability.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	ctx := context.Background()
	for _, e := range []staff.Employee{
		{ID: "anna", FullName: "Anna", Email: "anna@example.com", Role: auth.RoleEmployee},
		{ID: "ben", FullName: "Ben", Email: "ben@example.com", Role: auth.RoleEmployee},
		{ID: "mia", FullName: "Mia", Email: "mia@example.com", Role: auth.RoleManager},
	} {
		require.NoError(t, store.CreateEmployee(ctx, e, ""))
	}
	svc := availability.NewService(store, 14, 30, time.UTC, nil)
	svc.Now = func() time.Time { return day.Add(9 * time.Hour) }
	return svc, store
}

func TestSetStatusCyclesThroughAllStates(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	want := []string{availability.StatusAvailable, availability.StatusUnavailable, availability.StatusNeutral}
	for _, status := range want {
		entry, err := svc.SetStatus(ctx, anna, "anna", day, availability.Change{})
		require.NoError(t, err)
		assert.Equal(t, status, entry.Status)
	}

	entries, err := svc.ForDate(ctx, day)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSetStatusIsIdempotentForExplicitStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	status := availability.StatusUnavailable

	for i := 0; i < 2; i++ {
		_, err := svc.SetStatus(ctx, anna, "", day, availability.Change{Status: &status})
		require.NoError(t, err)
	}
	entries, err := svc.ForDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, availability.StatusUnavailable, entries[0].Status)
}

func TestSetStatusPermissions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, ben, "anna", day, availability.Change{})
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	entry, err := svc.SetStatus(ctx, manager, "anna", day, availability.Change{})
	require.NoError(t, err)
	assert.Equal(t, availability.StatusAvailable, entry.Status)

	_, err = svc.SetStatus(ctx, manager, "ghost", day, availability.Change{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestNoteOnEmptyDayMarksAvailable(t *testing.T) {
	svc, _ := newService(t)
	note := "only until 14:00"
	entry, err := svc.SetStatus(context.Background(), anna, "anna", day, availability.Change{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, availability.StatusAvailable, entry.Status)
	assert.Equal(t, note, entry.Note)
}

func TestConcurrentCyclingIsSerialized(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	const writers = 30
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SetStatus(ctx, anna, "anna", day, availability.Change{})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := svc.ForDate(ctx, day)
	require.NoError(t, err)
	assert.Empty(t, entries, "30 cycles must land back on Neutral")
}

func TestCalendarCoversHorizon(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, anna, "anna", day.AddDate(0, 0, 3), availability.Change{})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, anna, "anna", day.AddDate(0, 0, 20), availability.Change{})
	require.NoError(t, err)

	cells, err := svc.Calendar(ctx, "anna", day)
	require.NoError(t, err)
	require.Len(t, cells, 14)
	assert.Equal(t, availability.StatusNeutral, cells[0].Status)
	assert.Equal(t, availability.StatusAvailable, cells[3].Status)

	entries, err := svc.ForEmployee(ctx, "anna", day)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestPruneDropsEntriesBeforeRetention(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.SetStatus(ctx, anna, "anna", day.AddDate(0, 0, -40), availability.Change{})
	require.NoError(t, err)
	_, err = svc.SetStatus(ctx, anna, "anna", day.AddDate(0, 0, -5), availability.Change{})
	require.NoError(t, err)

	removed, err := svc.Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestNotesAreSealedAtRest(t *testing.T) {
	svc, store := newService(t)
	sealer, err := crypto.New("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)
	svc.Notes = sealer
	ctx := context.Background()

	note := "exam in the morning"
	entry, err := svc.SetStatus(ctx, anna, "anna", day, availability.Change{Note: &note})
	require.NoError(t, err)
	assert.Equal(t, note, entry.Note)

	raw, err := store.AvailabilityForDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, raw, 1)
	assert.NotEqual(t, note, raw[0].Note)

	entries, err := svc.ForDate(ctx, day)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, note, entries[0].Note)

	entry, err = svc.SetStatus(ctx, anna, "anna", day, availability.Change{})
	require.NoError(t, err)
	assert.Equal(t, note, entry.Note, "cycling keeps the note")
}
