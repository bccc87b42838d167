package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shiftdesk/internal/domain/apperr"
)

func TestParse(t *testing.T) {
	day, err := Parse("2024-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), day)

	_, err = Parse("01/05/2024")
	assert.ErrorIs(t, err, apperr.ErrInvalidRange)
}

func TestOfUsesLocation(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	instant := time.Date(2024, 5, 1, 23, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-05-02", Format(Of(instant, berlin)))
	assert.Equal(t, "2024-05-01", Format(Of(instant, nil)))
}

func TestBounds(t *testing.T) {
	start, end := Bounds(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestWeekStart(t *testing.T) {
	sunday := time.Date(2024, 5, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC), WeekStart(sunday))

	monday := time.Date(2024, 4, 29, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, monday, WeekStart(monday))
}

func TestRange(t *testing.T) {
	days := Range(time.Date(2024, 2, 28, 0, 0, 0, 0, time.UTC), 3)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-03-01", Format(days[2]))
}
