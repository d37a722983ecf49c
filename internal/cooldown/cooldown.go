// Package cooldown rate-limits preset placement requests coming from other
// plugins.
package cooldown

import (
	"sync"
	"time"
)

// DefaultInterval is the minimum spacing between two allowed placements.
const DefaultInterval = 3 * time.Second

// Gate allows one request per interval. The first request is always
// allowed and a rejected request does not push the window forward.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
	now      func() time.Time
}

// New creates a gate. A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration) *Gate {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Gate{interval: interval, now: time.Now}
}

// Allow reports whether a request may proceed now and, if so, starts a new
// window.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if !g.last.IsZero() && now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}

// Remaining is how long until the next request would be allowed.
func (g *Gate) Remaining() time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.last.IsZero() {
		return 0
	}
	return max(g.interval-g.now().Sub(g.last), 0)
}

func (g *Gate) Interval() time.Duration {
	return g.interval
}
