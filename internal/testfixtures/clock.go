package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually driven time source. Booking and sweep tests steer it
// past a work order's scheduled end instead of sleeping.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock pinned to start. A zero start pins it to
// ReferenceTime, the opening instant of the fixture day.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now reports the instant the clock was last steered to.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc adapts the clock to the `func() time.Time` shape the services
// take as their now dependency. A nil receiver yields the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set jumps the clock to an absolute instant, typically just past a
// booking's end to make it overdue.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance rolls the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}

// Current is Now under a name that makes read-only assertions explicit.
func (c *Clock) Current() time.Time {
	return c.Now()
}
