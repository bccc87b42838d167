package availability

import (
	"strings"

	"shiftdesk/internal/domain/apperr"
)

// NextStatus cycles Neutral -> Available -> Unavailable -> Neutral.
func NextStatus(current string) string {
	switch current {
	case StatusAvailable:
		return StatusUnavailable
	case StatusUnavailable:
		return StatusNeutral
	default:
		return StatusAvailable
	}
}

func ValidStatus(status string) bool {
	switch status {
	case StatusNeutral, StatusAvailable, StatusUnavailable:
		return true
	}
	return false
}

// Apply computes the entry that results from applying change to current.
// current.Status is Neutral when no entry exists.
func Apply(current Entry, change Change) (Entry, error) {
	next := current
	if next.Status == "" {
		next.Status = StatusNeutral
	}

	switch {
	case change.Status != nil:
		status := strings.TrimSpace(*change.Status)
		if !ValidStatus(status) {
			return Entry{}, apperr.InvalidRange("status must be Neutral, Available or Unavailable")
		}
		next.Status = status
		if change.Note != nil {
			next.Note = strings.TrimSpace(*change.Note)
		}
	case change.Note != nil:
		next.Note = strings.TrimSpace(*change.Note)
		if next.Status == StatusNeutral {
			next.Status = StatusAvailable
		}
	default:
		next.Status = NextStatus(next.Status)
	}

	if next.Status == StatusNeutral {
		next.Note = ""
	}
	return next, nil
}
