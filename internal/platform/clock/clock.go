// Package clock provides the time sources the disclosure and readiness flows
// depend on. Core logic never calls time.Now or time.Sleep directly; it takes a
// Clock for "now" and a Scheduler for cooperative, cancellable waits, so tests
// drive time explicitly.
package clock

import (
	"context"
	"sync"
	"time"
)

// Clock provides the current time.
type Clock interface {
	Now() time.Time
}

// Scheduler suspends the caller for d or until ctx is done, whichever comes
// first. It returns ctx.Err() on cancellation.
type Scheduler interface {
	Wait(ctx context.Context, d time.Duration) error
}

// Real is the wall clock and timer-backed scheduler. Use at entry points only.
type Real struct{}

// Now returns the system time.
func (Real) Now() time.Time { return time.Now() }

// Wait blocks on a timer, returning early when ctx is cancelled.
func (Real) Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Fixed always returns the same instant.
type Fixed struct{ T time.Time }

// Now returns the fixed time.
func (c Fixed) Now() time.Time { return c.T }

// Manual is a test clock whose time only moves through Advance or Wait. Wait
// advances the clock by d immediately instead of blocking.
type Manual struct {
	mu    sync.Mutex
	now   time.Time
	waits []time.Duration
}

// NewManual starts a manual clock at t.
func NewManual(t time.Time) *Manual {
	return &Manual{now: t}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves time forward by d.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	m.now = m.now.Add(d)
	m.mu.Unlock()
}

// Wait records d and advances time, honouring prior cancellation.
func (m *Manual) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	m.waits = append(m.waits, d)
	if d > 0 {
		m.now = m.now.Add(d)
	}
	m.mu.Unlock()
	return nil
}

// Waits returns every duration passed to Wait so far.
func (m *Manual) Waits() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.waits))
	copy(out, m.waits)
	return out
}
