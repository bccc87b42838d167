// Package dates handles calendar days. A day is a time.Time at 00:00 UTC of
// that calendar date, which is also how Postgres DATE columns scan.
package dates

import (
	"strings"
	"time"

	"shiftdesk/internal/domain/apperr"
)

const Layout = "2006-01-02"

func Parse(value string) (time.Time, error) {
	parsed, err := time.Parse(Layout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindInvalidRange, "date must be in YYYY-MM-DD format", err)
	}
	return parsed, nil
}

func Format(day time.Time) string {
	return day.Format(Layout)
}

// Of returns the calendar day of instant t as observed in loc.
func Of(t time.Time, loc *time.Location) time.Time {
	local := t.In(orUTC(loc))
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// Bounds returns the instants [start, end) covering day in loc.
func Bounds(day time.Time, loc *time.Location) (time.Time, time.Time) {
	loc = orUTC(loc)
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}

// At combines a day with a clock time in loc.
func At(day time.Time, hour, minute int, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, orUTC(loc))
}

func MonthStart(t time.Time, loc *time.Location) time.Time {
	local := t.In(orUTC(loc))
	return time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, local.Location())
}

// WeekStart returns the Monday on or before day.
func WeekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// Range lists n consecutive days starting at from.
func Range(from time.Time, n int) []time.Time {
	out := make([]time.Time, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, from.AddDate(0, 0, i))
	}
	return out
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
