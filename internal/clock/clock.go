// Package clock stamps audit log entries.
//
// Log entries are ordered by timestamp, so the clock never hands out a value
// earlier than or equal to the previous one, even if the wall clock steps
// backwards. Values are truncated to microseconds because postgres stores no
// finer precision; two entries written in the same microsecond are pushed
// one microsecond apart.
package clock

import (
	"sync"
	"time"
)

// Clock is the time source used by the engine.
type Clock interface {
	Now() time.Time
}

// Monotonic is safe for concurrent use.
type Monotonic struct {
	mu   sync.Mutex
	last time.Time
	wall func() time.Time
}

// NewMonotonic wraps wall; a nil wall means time.Now.
func NewMonotonic(wall func() time.Time) *Monotonic {
	if wall == nil {
		wall = time.Now
	}
	return &Monotonic{wall: wall}
}

// Now returns a UTC time strictly after every value previously returned.
func (c *Monotonic) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := c.wall().UTC().Truncate(time.Microsecond)
	if !t.After(c.last) {
		t = c.last.Add(time.Microsecond)
	}
	c.last = t
	return t
}

// Last returns the most recent value handed out, or the zero time.
func (c *Monotonic) Last() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
