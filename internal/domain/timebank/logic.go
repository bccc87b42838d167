package timebank

import (
	"math"
	"time"
)

// WorkedHours sums closed entries whose clock-in falls in [from, to), rounded
// to whole hours. Open entries are ignored.
func WorkedHours(entries []TimeEntry, from, to time.Time) float64 {
	var total time.Duration
	for _, e := range entries {
		if e.ClockOut == nil {
			continue
		}
		if e.ClockIn.Before(from) || !e.ClockIn.Before(to) {
			continue
		}
		total += e.ClockOut.Sub(e.ClockIn)
	}
	return math.Round(total.Hours())
}
