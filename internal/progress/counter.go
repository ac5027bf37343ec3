// Package progress tracks completed pages and reports run progress to the
// terminal and to machine-readable event sinks.
package progress

import (
	"sync"
	"sync/atomic"
)

// Counter counts completed pages out of a fixed total. Safe for concurrent use.
type Counter struct {
	mu    sync.Mutex
	total int
	done  atomic.Int64
}

// NewCounter returns a counter for total pages.
func NewCounter(total int) *Counter {
	return &Counter{total: total}
}

// Inc records one more completed page and returns the new done count.
func (c *Counter) Inc() int {
	return c.Advance(nil)
}

// Advance records one more completed page and calls notify with the new count
// before any other increment can happen, so notifications observe done counts
// in strictly increasing order.
func (c *Counter) Advance(notify func(done, total int)) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := int(c.done.Add(1))
	if notify != nil {
		notify(n, c.total)
	}
	return n
}

// Done returns the number of completed pages.
func (c *Counter) Done() int { return int(c.done.Load()) }

// Total returns the number of pages in the run.
func (c *Counter) Total() int { return c.total }

// Percent returns done/total as a percentage, clamped to [0, 100].
func Percent(done, total int) float64 {
	if total <= 0 {
		return 0
	}
	pct := float64(done) / float64(total) * 100
	if pct > 100 {
		pct = 100
	}
	return pct
}
