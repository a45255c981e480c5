// Package stats provides a resettable timing-statistics collector for
// request handlers. The collector aggregates per-operation durations and is
// cleared through the admin API's POST /status/reset endpoint.
package stats

import (
	"sync"
	"time"
)

// Timing aggregates observed durations for a single named operation.
type Timing struct {
	Count int64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
}

// Collector accumulates operation timings. Safe for concurrent use.
type Collector struct {
	mu      sync.Mutex
	timings map[string]*Timing
}

// NewCollector creates an empty timing collector.
func NewCollector() *Collector {
	return &Collector{timings: make(map[string]*Timing)}
}

// Record adds one observation for the named operation.
func (c *Collector) Record(name string, d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	t, ok := c.timings[name]
	if !ok {
		t = &Timing{Min: d, Max: d}
		c.timings[name] = t
	}

	t.Count++
	t.Total += d
	if d < t.Min {
		t.Min = d
	}
	if d > t.Max {
		t.Max = d
	}
}

// Time starts a timer for the named operation. The returned function stops
// the timer and records the elapsed duration.
func (c *Collector) Time(name string) func() {
	start := time.Now()
	return func() {
		c.Record(name, time.Since(start))
	}
}

// Reset discards all accumulated timings.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timings = make(map[string]*Timing)
}

// Snapshot returns a copy of the current timings keyed by operation name.
func (c *Collector) Snapshot() map[string]Timing {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[string]Timing, len(c.timings))
	for name, t := range c.timings {
		out[name] = *t
	}
	return out
}
