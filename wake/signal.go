package wake

import (
	"context"
	"time"
)

// Result reports why a Wait returned.
type Result int

// Wait results.
const (
	// TimedOut means the timeout elapsed with no wake pending.
	TimedOut Result = iota

	// Woken means a pending wake was consumed.
	Woken

	// Cancelled means the context passed to WaitContext was done first.
	Cancelled
)

// String implements fmt.Stringer.
func (r Result) String() string {
	switch r {
	case TimedOut:
		return "timed out"
	case Woken:
		return "woken"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Signal is an auto-resetting wake flag with at most one pending wake.
// Post is safe for concurrent use; Wait is meant to be called by a single
// consumer.
type Signal struct {
	ch chan struct{}
}

// New returns a Signal with no wake pending.
func New() *Signal {
	return &Signal{ch: make(chan struct{}, 1)}
}

// Post marks a wake as pending. It never blocks and is a no-op while a wake
// is already pending.
func (s *Signal) Post() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Pending reports whether a wake is waiting to be consumed, without
// consuming it.
func (s *Signal) Pending() bool {
	return len(s.ch) > 0
}

// Wait blocks until a wake is pending or timeout elapses, whichever comes
// first. A non-positive timeout checks for a pending wake without blocking.
func (s *Signal) Wait(timeout time.Duration) Result {
	return s.WaitContext(context.Background(), timeout)
}

// WaitContext is Wait that also returns Cancelled once ctx is done.
// A pending wake takes precedence over cancellation.
func (s *Signal) WaitContext(ctx context.Context, timeout time.Duration) Result {
	// Fast path: consume a wake posted before we got here.
	select {
	case <-s.ch:
		return Woken
	default:
	}

	if timeout <= 0 {
		if ctx.Err() != nil {
			return Cancelled
		}
		return TimedOut
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.ch:
		return Woken
	case <-timer.C:
		return TimedOut
	case <-ctx.Done():
		return Cancelled
	}
}
