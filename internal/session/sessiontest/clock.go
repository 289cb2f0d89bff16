// Package sessiontest holds helpers for driving the session guard in tests.
package sessiontest

import (
	"sort"
	"sync"
	"time"

	"leave-portal/internal/session"
)

// ManualClock only moves when Advance is called. Timers whose deadline is
// reached fire synchronously inside Advance, in deadline order.
type ManualClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	clock    *ManualClock
	deadline time.Time
	fn       func()
	stopped  bool
}

func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *ManualClock) AfterFunc(d time.Duration, f func()) session.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, deadline: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// Pending returns the number of armed timers.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing every timer that comes due,
// including timers armed by callbacks during the advance.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		due := c.nextDueLocked(target)
		if due == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		due.stopped = true
		if due.deadline.After(c.now) {
			c.now = due.deadline
		}
		c.mu.Unlock()
		due.fn()
	}
}

func (c *ManualClock) nextDueLocked(target time.Time) *manualTimer {
	live := c.timers[:0]
	for _, t := range c.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	c.timers = live
	sort.SliceStable(c.timers, func(i, j int) bool {
		return c.timers[i].deadline.Before(c.timers[j].deadline)
	})
	for _, t := range c.timers {
		if !t.deadline.After(target) {
			return t
		}
	}
	return nil
}
