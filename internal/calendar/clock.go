package calendar

import "time"

// Clock supplies the instant that an operation treats as "now".
//
// The recovery engine never reads the wall clock itself; the CLI and HTTP
// layers ask a Clock once per request and pass the result down explicitly.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock always returns the same instant. Used for --now overrides.
type FixedClock struct {
	At time.Time
}

// Now returns the fixed instant.
func (c FixedClock) Now() time.Time {
	return c.At
}
