package shared

import (
	"strings"
	"time"

	"shiftdesk/internal/domain/apperr"
	"shiftdesk/internal/platform/dates"
)

// ParseDate accepts YYYY-MM-DD and returns the calendar day. Empty input
// yields the zero time.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	return dates.Parse(value)
}

// ParseInstant accepts RFC3339 timestamps.
func ParseInstant(value string) (time.Time, error) {
	parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindInvalidRange, "timestamp must be RFC3339", err)
	}
	return parsed, nil
}

// ParseMonth accepts YYYY-MM and returns the first day of that month.
func ParseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.KindInvalidRange, "month must be in YYYY-MM format", err)
	}
	return parsed, nil
}
