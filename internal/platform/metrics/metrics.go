package metrics

import (
	"maps"
	"sync"
	"sync/atomic"
	"time"
)

// Collector keeps in-process counters for the HTTP surface and for request
// lifecycle outcomes. Counters reset on restart.
type Collector struct {
	httpTotal   atomic.Uint64
	httpErrors  atomic.Uint64
	rateLimited atomic.Uint64
	durationMs  atomic.Uint64

	mu     sync.Mutex
	events map[string]uint64
}

func New() *Collector {
	return &Collector{events: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	c.httpTotal.Add(1)
	if status >= 500 {
		c.httpErrors.Add(1)
	}
	if status == 429 {
		c.rateLimited.Add(1)
	}
	c.durationMs.Add(uint64(duration.Milliseconds()))
}

// Count increments a named lifecycle event such as "request.created.leave"
// or "request.denied.window_expired".
func (c *Collector) Count(event string) {
	c.mu.Lock()
	c.events[event]++
	c.mu.Unlock()
}

func (c *Collector) Snapshot() map[string]any {
	total := c.httpTotal.Load()
	totalMs := c.durationMs.Load()
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	events := maps.Clone(c.events)
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":    total,
		"errorsTotal":      c.httpErrors.Load(),
		"rateLimitedTotal": c.rateLimited.Load(),
		"avgDurationMs":    avg,
		"events":           events,
	}
}
