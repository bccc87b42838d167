package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests   uint64
	errorRequests   uint64
	clientErrors    uint64
	rateLimited     uint64
	conflicts       uint64
	totalDurationMs uint64

	mu      sync.Mutex
	sources map[string]func() map[string]any
}

func New() *Collector {
	return &Collector{sources: map[string]func() map[string]any{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	switch {
	case status >= 500:
		atomic.AddUint64(&c.errorRequests, 1)
	case status == 429:
		atomic.AddUint64(&c.rateLimited, 1)
		atomic.AddUint64(&c.clientErrors, 1)
	case status == 409:
		atomic.AddUint64(&c.conflicts, 1)
		atomic.AddUint64(&c.clientErrors, 1)
	case status >= 400:
		atomic.AddUint64(&c.clientErrors, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// Register adds a named group of values computed at snapshot time, such as
// event bus or job queue statistics.
func (c *Collector) Register(name string, source func() map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sources[name] = source
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}
	out := map[string]any{
		"requestsTotal":     total,
		"errorsTotal":       errs,
		"clientErrorsTotal": atomic.LoadUint64(&c.clientErrors),
		"rateLimitedTotal":  atomic.LoadUint64(&c.rateLimited),
		"conflictsTotal":    atomic.LoadUint64(&c.conflicts),
		"avgDurationMs":     avg,
		"totalDurationMs":   totalMs,
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for name, source := range c.sources {
		out[name] = source()
	}
	return out
}
