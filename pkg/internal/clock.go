// Package internal provides internal utilities shared by the browsertest packages.
package internal

import (
	"sync"
	"time"
)

// Clock is an interface for obtaining time and scheduling timeouts.
// This abstraction allows for deterministic testing of time-dependent code.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// MonotonicClock is a Clock implementation backed by the runtime timers.
type MonotonicClock struct{}

// Now returns the current system time with monotonic clock reading.
func (MonotonicClock) Now() time.Time {
	return time.Now()
}

// After waits for the duration to elapse using time.After.
func (MonotonicClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// MockClock is a Clock implementation for testing that allows manual control
// of time progression. Timers created with After fire only when Advance or
// Set moves the clock past their deadline. It is safe for concurrent use.
type MockClock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*mockTimer
}

type mockTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// NewMockClock creates a new MockClock initialized to the given time.
// If t is zero, it initializes to a reasonable default start time.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		// Start at a reasonable time to avoid edge cases with zero time
		t = time.Unix(1000000000, 0) // 2001-09-09
	}
	return &MockClock{current: t}
}

// Now returns the mock clock's current time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// After registers a timer that fires once the clock reaches now+d.
// A non-positive d fires immediately.
func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan time.Time, 1)
	if d <= 0 {
		ch <- m.current
		return ch
	}
	m.timers = append(m.timers, &mockTimer{deadline: m.current.Add(d), ch: ch})
	return ch
}

// Advance moves the clock forward by the given duration and fires every
// timer whose deadline has been reached.
// Panics if d is negative to maintain monotonicity.
func (m *MockClock) Advance(d time.Duration) {
	if d < 0 {
		panic("MockClock.Advance: duration must be non-negative")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.current.Add(d)
	m.fireLocked()
}

// Set sets the clock to the given time and fires due timers.
// This should only be used for initialization; prefer Advance for tests.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = t
	m.fireLocked()
}

// PendingTimers reports how many timers have not fired yet.
func (m *MockClock) PendingTimers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}

func (m *MockClock) fireLocked() {
	pending := m.timers[:0]
	for _, t := range m.timers {
		if !m.current.Before(t.deadline) {
			t.ch <- m.current
			continue
		}
		pending = append(pending, t)
	}
	m.timers = pending
}
