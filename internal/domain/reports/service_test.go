package reports_test

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/domain/auth"
	"shiftdesk/internal/domain/availability"
	"shiftdesk/internal/domain/reports"
	"shiftdesk/internal/domain/roster"
	"shiftdesk/internal/domain/staff"
	"shiftdesk/internal/domain/timebank"
	"shiftdesk/internal/storage/memory"
)

var (
	anna    = auth.Actor{EmployeeID: "anna", Role: auth.RoleEmployee}
	manager = auth.Actor{EmployeeID: "mia", Role: auth.RoleManager}
	monday  = time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (*reports.Service, *roster.Service, *memory.Store) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	for _, e := range []staff.Employee{
		{ID: "anna", FullName: "Anna Müller", Email: "anna@example.com", Role: auth.RoleEmployee, MonthlyHours: 40},
		{ID: "mia", FullName: "Mia", Email: "mia@example.com", Role: auth.RoleManager},
	} {
		require.NoError(t, store.CreateEmployee(ctx, e, ""))
	}
	staffSvc := staff.NewService(store, nil)
	avail := availability.NewService(store, 14, 90, time.UTC, nil)
	rosterSvc := roster.NewService(store, avail, staffSvc, nil, time.UTC, nil)
	require.NoError(t, rosterSvc.SyncAreas(ctx, []roster.Area{{ID: "bakery", Name: "Bäckerei"}}))
	timeSvc := timebank.NewService(store, staffSvc, nil, 8, time.UTC, nil)
	return reports.NewService(rosterSvc, timeSvc, staffSvc, time.UTC, nil), rosterSvc, store
}

func TestRosterPDF(t *testing.T) {
	svc, rosterSvc, _ := newService(t)
	ctx := context.Background()
	start := monday.Add(30 * time.Hour)
	_, err := rosterSvc.CreateShift(ctx, manager, roster.ShiftInput{EmployeeID: "anna", AreaID: "bakery", Start: start, End: start.Add(6 * time.Hour)})
	require.NoError(t, err)

	var denied bytes.Buffer
	assert.ErrorIs(t, svc.RosterPDF(ctx, anna, monday, &denied), apperr.ErrPermissionDenied)
	assert.Zero(t, denied.Len())

	var buf bytes.Buffer
	require.NoError(t, svc.RosterPDF(ctx, manager, monday.AddDate(0, 0, 2), &buf))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestTimesheetCSV(t *testing.T) {
	svc, _, store := newService(t)
	ctx := context.Background()
	in := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 30*time.Minute)
	store.SeedTimeEntry(timebank.TimeEntry{ID: "e1", EmployeeID: "anna", ClockIn: in, ClockOut: &out})

	var denied bytes.Buffer
	err := svc.TimesheetCSV(ctx, auth.Actor{EmployeeID: "ben", Role: auth.RoleEmployee}, "anna", monday, &denied)
	assert.ErrorIs(t, err, apperr.ErrPermissionDenied)

	var buf bytes.Buffer
	require.NoError(t, svc.TimesheetCSV(ctx, anna, "anna", monday, &buf))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"employee", "date", "clock_in", "clock_out", "hours"}, rows[0])
	assert.Equal(t, []string{"Anna Müller", "2024-05-02", "08:00", "15:30", "7.50"}, rows[1])
	assert.Equal(t, []string{"Anna Müller", "total", "", "", "8"}, rows[2])
}
