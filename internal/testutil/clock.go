package testutil

import (
	"slices"
	"sync"
	"time"

	"github.com/calvinalkan/focus/pkg/clock"
)

// Clock is a manual [clock.Clock]. Time only moves on Advance, and due timers
// fire synchronously on the goroutine calling Advance, in deadline order.
type Clock struct {
	mu      sync.Mutex
	current time.Time
	timers  []*manualTimer
	seq     int
}

var _ clock.Clock = (*Clock)(nil)

// NewClock returns a clock initialized to a fixed UTC start time.
func NewClock() *Clock {
	return &Clock{
		current: time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC),
	}
}

// Now returns the current manual time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.current
}

// AfterFunc schedules f at Now()+d.
func (c *Clock) AfterFunc(d time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.seq++
	timer := &manualTimer{clock: c, at: c.current.Add(d), seq: c.seq, f: f}
	c.timers = append(c.timers, timer)

	return timer
}

// Pending returns the number of timers that have not fired or been stopped.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

// Advance moves time forward by d, firing every timer that becomes due.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.current.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()

		slices.SortFunc(c.timers, func(a, b *manualTimer) int {
			if cmp := a.at.Compare(b.at); cmp != 0 {
				return cmp
			}

			return a.seq - b.seq
		})

		if len(c.timers) == 0 || c.timers[0].at.After(target) {
			c.current = target
			c.mu.Unlock()

			return
		}

		next := c.timers[0]
		c.timers = c.timers[1:]
		c.current = next.at
		c.mu.Unlock()

		next.f()
	}
}

type manualTimer struct {
	clock *Clock
	at    time.Time
	seq   int
	f     func()
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	for i, pending := range t.clock.timers {
		if pending == t {
			t.clock.timers = slices.Delete(t.clock.timers, i, i+1)

			return true
		}
	}

	return false
}
