package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// Since returns the time elapsed since t
	Since(t time.Time) time.Duration

	// NewTicker returns a ticker that fires every d
	NewTicker(d time.Duration) Ticker
}

// Ticker delivers ticks until stopped. Like time.Ticker, ticks are dropped
// when the reader falls behind.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t
func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// NewTicker wraps time.NewTicker
func (c *RealClock) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct {
	t *time.Ticker
}

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }
