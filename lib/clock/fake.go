// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sort"
	"sync"
	"time"
)

// Fake returns a FakeClock initialized to the given time. Time stands
// still until Advance is called; pending After waits and tickers fire
// when the clock advances past their deadline.
//
// FakeClock is safe for concurrent use.
func Fake(initial time.Time) *FakeClock {
	return &FakeClock{current: initial}
}

// FakeClock is a deterministic Clock for tests. Waiters fire in
// deadline order during Advance, each receiving its own fire time
// rather than the final advanced time, so a ticker observed across a
// large Advance sees evenly spaced ticks.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	waiters []*fakeWaiter
}

type fakeWaiter struct {
	deadline time.Time
	channel  chan time.Time

	// interval is non-zero for ticker waiters: after firing, the
	// waiter is rescheduled at deadline + interval.
	interval time.Duration

	stopped bool
	fired   bool
}

// Now returns the current fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// After returns a channel that receives once the clock has been
// advanced by at least d. If d <= 0 the channel receives immediately.
func (c *FakeClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	channel := make(chan time.Time, 1)
	if d <= 0 {
		channel <- c.current
		return channel
	}
	c.waiters = append(c.waiters, &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  channel,
	})
	return channel
}

// NewTicker returns a Ticker that fires on each Advance crossing a
// multiple of d.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	waiter := &fakeWaiter{
		deadline: c.current.Add(d),
		channel:  make(chan time.Time, 1),
		interval: d,
	}
	c.waiters = append(c.waiters, waiter)

	return &Ticker{
		C: waiter.channel,
		stopFunc: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			waiter.stopped = true
		},
	}
}

// Advance moves the fake time forward by d, firing every waiter whose
// deadline falls within the advanced window, in deadline order.
// Channel sends are non-blocking: like time.Ticker, a tick is dropped
// when the buffered slot is already full.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	target := c.current.Add(d)
	for {
		next := c.nextFireableLocked(target)
		if next == nil {
			break
		}
		c.current = next.deadline
		select {
		case next.channel <- next.deadline:
		default:
		}
		if next.interval > 0 {
			next.deadline = next.deadline.Add(next.interval)
		} else {
			next.fired = true
		}
	}
	c.current = target
	c.compactLocked()
}

// nextFireableLocked returns the live waiter with the earliest
// deadline at or before target, or nil when none remain.
func (c *FakeClock) nextFireableLocked(target time.Time) *fakeWaiter {
	sort.SliceStable(c.waiters, func(i, j int) bool {
		return c.waiters[i].deadline.Before(c.waiters[j].deadline)
	})
	for _, waiter := range c.waiters {
		if waiter.stopped || waiter.fired {
			continue
		}
		if !waiter.deadline.After(target) {
			return waiter
		}
	}
	return nil
}

// compactLocked drops stopped and fired waiters.
func (c *FakeClock) compactLocked() {
	live := c.waiters[:0]
	for _, waiter := range c.waiters {
		if !waiter.stopped && !waiter.fired {
			live = append(live, waiter)
		}
	}
	c.waiters = live
}
