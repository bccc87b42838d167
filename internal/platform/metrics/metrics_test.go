package metrics

import (
	"testing"
	"time"
)

func TestSnapshotCountsByStatus(t *testing.T) {
	c := New()
	c.Record(200, 10*time.Millisecond)
	c.Record(409, 20*time.Millisecond)
	c.Record(429, 0)
	c.Record(500, 30*time.Millisecond)
	c.Register("events", func() map[string]any { return map[string]any{"eventsDropped": 0} })

	snap := c.Snapshot()
	if snap["requestsTotal"].(uint64) != 4 {
		t.Fatalf("expected 4 requests, got %v", snap["requestsTotal"])
	}
	if snap["errorsTotal"].(uint64) != 1 || snap["conflictsTotal"].(uint64) != 1 || snap["rateLimitedTotal"].(uint64) != 1 {
		t.Fatalf("unexpected counters %v", snap)
	}
	if snap["clientErrorsTotal"].(uint64) != 2 {
		t.Fatalf("expected 2 client errors, got %v", snap["clientErrorsTotal"])
	}
	if snap["avgDurationMs"].(float64) != 15 {
		t.Fatalf("expected avg 15ms, got %v", snap["avgDurationMs"])
	}
	if _, ok := snap["events"]; !ok {
		t.Fatal("expected registered source in snapshot")
	}
}
