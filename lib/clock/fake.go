// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"slices"
	"sync"
	"time"
)

// FakeClock is a Clock whose time moves only when Advance is called.
// It is safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	changed *sync.Cond
	now     time.Time
	pending []*waiter
}

// waiter is one registered After, AfterFunc or ticker deadline.
// Exactly one of channel and callback is set.
type waiter struct {
	deadline time.Time
	channel  chan time.Time
	callback func()
	period   time.Duration
}

// Fake returns a FakeClock reading initial until advanced.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{now: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// After registers a one-shot channel waiter.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.now
		return channel
	}
	c.registerLocked(&waiter{deadline: c.now.Add(d), channel: channel})
	return channel
}

// AfterFunc registers f to run during the Advance call that crosses
// its deadline. A non-positive d runs f before AfterFunc returns.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) *Timer {
	if d <= 0 {
		f()
		return &Timer{stop: func() bool { return false }}
	}
	c.mu.Lock()
	entry := &waiter{deadline: c.now.Add(d), callback: f}
	c.registerLocked(entry)
	c.mu.Unlock()
	return &Timer{stop: func() bool { return c.cancel(entry) }}
}

// NewTicker registers a periodic channel waiter.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: NewTicker with non-positive interval")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	channel := make(chan time.Time, 1)
	entry := &waiter{deadline: c.now.Add(d), channel: channel, period: d}
	c.registerLocked(entry)
	return &Ticker{C: channel, stop: func() { c.cancel(entry) }}
}

// Advance moves the clock forward by d. Every waiter whose deadline
// is reached fires in deadline order: callbacks run on the calling
// goroutine, channel sends never block. A ticker spanning several
// periods fires once per period, subject to its one-slot buffer.
//
// Callbacks must not call Advance.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	target := c.now
	c.mu.Unlock()

	for {
		entry, fireAt, ok := c.popDue(target)
		if !ok {
			return
		}
		if entry.callback != nil {
			entry.callback()
			continue
		}
		select {
		case entry.channel <- fireAt:
		default:
		}
	}
}

// WaitForTimers blocks until at least n waiters are pending. Tests
// call it before Advance when another goroutine registers the timer.
func (c *FakeClock) WaitForTimers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.pending) < n {
		c.changed.Wait()
	}
}

// PendingCount returns the number of waiters that have neither fired
// nor been stopped.
func (c *FakeClock) PendingCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *FakeClock) registerLocked(entry *waiter) {
	c.pending = append(c.pending, entry)
	c.changed.Broadcast()
}

// cancel removes entry from the pending set, reporting whether it was
// still pending.
func (c *FakeClock) cancel(entry *waiter) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	index := slices.Index(c.pending, entry)
	if index < 0 {
		return false
	}
	c.pending = slices.Delete(c.pending, index, index+1)
	return true
}

// popDue removes the earliest waiter due at or before target.
// Tickers are re-registered one period later.
func (c *FakeClock) popDue(target time.Time) (*waiter, time.Time, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	earliest := -1
	for index, entry := range c.pending {
		if entry.deadline.After(target) {
			continue
		}
		if earliest < 0 || entry.deadline.Before(c.pending[earliest].deadline) {
			earliest = index
		}
	}
	if earliest < 0 {
		return nil, time.Time{}, false
	}

	entry := c.pending[earliest]
	fireAt := entry.deadline
	if entry.period > 0 {
		entry.deadline = entry.deadline.Add(entry.period)
	} else {
		c.pending = slices.Delete(c.pending, earliest, earliest+1)
	}
	return entry, fireAt, true
}
