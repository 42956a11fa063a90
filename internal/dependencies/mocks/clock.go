package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/boardbank/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. It is safe to use
// from the goroutines of a running server. Tickers fire only when the clock
// is moved with Advance or Set.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	tickers     []*mockTicker
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.CurrentTime
}

// Since returns the mocked time elapsed since t
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// NewTicker returns a ticker driven by this clock
func (c *MockClock) NewTicker(d time.Duration) clock.Ticker {
	if d <= 0 {
		panic("non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &mockTicker{
		clock:  c,
		period: d,
		next:   c.CurrentTime.Add(d),
		ch:     make(chan time.Time, 1),
	}
	c.tickers = append(c.tickers, t)
	return t
}

// TickerCount returns how many tickers are live
func (c *MockClock) TickerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tickers)
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
	c.fireLocked()
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
	c.fireLocked()
}

func (c *MockClock) fireLocked() {
	for _, t := range c.tickers {
		for !t.next.After(c.CurrentTime) {
			select {
			case t.ch <- t.next:
			default:
			}
			t.next = t.next.Add(t.period)
		}
	}
}

type mockTicker struct {
	clock  *MockClock
	period time.Duration
	next   time.Time
	ch     chan time.Time
}

func (t *mockTicker) C() <-chan time.Time {
	return t.ch
}

func (t *mockTicker) Stop() {
	c := t.clock
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, other := range c.tickers {
		if other == t {
			c.tickers = append(c.tickers[:i], c.tickers[i+1:]...)
			return
		}
	}
}
