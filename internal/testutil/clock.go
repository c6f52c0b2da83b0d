package testutil

import (
	"sync"
	"time"
)

// SteppingClock is a settable wall clock for tests.
//
// It satisfies calendar.Clock. Scenarios move it forward with Advance or jump
// with Set to cross midnight, week and DST boundaries deterministically.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type SteppingClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewSteppingClock creates a clock reading start.
func NewSteppingClock(start time.Time) *SteppingClock {
	return &SteppingClock{now: start}
}

// Now returns the current instant without moving the clock.
func (c *SteppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set jumps the clock to t. Moving backwards is allowed.
func (c *SteppingClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d and returns the new instant.
func (c *SteppingClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}
