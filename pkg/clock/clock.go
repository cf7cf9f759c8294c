// Package clock abstracts wall time and timers so time-driven behavior can be
// tested deterministically.
package clock

import (
	"sync"
	"time"
)

// Clock tells time and schedules callbacks.
type Clock interface {
	Now() time.Time
	// AfterFunc calls f in its own goroutine after d.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a pending callback created by [Clock.AfterFunc].
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer; false means it already fired or was stopped.
	Stop() bool
}

// Real returns a Clock backed by package time.
func Real() Clock {
	return realClock{}
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RestartableTimer fires f once after a fixed delay from the most recent
// Restart. Restarting before the delay elapsed cancels the pending firing.
//
// A callback that was already running when Restart or Stop was called is
// discarded, so only the latest window ever fires.
type RestartableTimer struct {
	clock Clock
	delay time.Duration
	f     func()

	mu         sync.Mutex
	pending    Timer
	generation uint64
}

// NewRestartableTimer returns a stopped timer.
func NewRestartableTimer(c Clock, delay time.Duration, f func()) *RestartableTimer {
	if c == nil {
		panic("clock is nil")
	}

	if f == nil {
		panic("f is nil")
	}

	return &RestartableTimer{clock: c, delay: delay, f: f}
}

// Restart cancels any pending firing and schedules a new one.
func (t *RestartableTimer) Restart() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.stopLocked()

	gen := t.generation
	t.pending = t.clock.AfterFunc(t.delay, func() { t.fire(gen) })
}

// Stop cancels any pending firing. It reports whether one was pending.
func (t *RestartableTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.stopLocked()
}

func (t *RestartableTimer) stopLocked() bool {
	t.generation++

	if t.pending == nil {
		return false
	}

	stopped := t.pending.Stop()
	t.pending = nil

	return stopped
}

func (t *RestartableTimer) fire(gen uint64) {
	t.mu.Lock()
	if gen != t.generation {
		t.mu.Unlock()

		return
	}

	t.pending = nil
	t.mu.Unlock()

	t.f()
}
