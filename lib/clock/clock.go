// Copyright 2026 The Telboard Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock abstracts time operations for testability. Production
// code injects Real(); tests inject Fake() and advance time
// deterministically. Any function that would call time.Now,
// time.After, or time.NewTicker takes a Clock instead.
package clock

import "time"

// Clock provides the subset of the time package that telboard
// observes: wall-clock reads (timestamps, the desktop clock line),
// one-shot waits (status notice fades), and periodic ticks (the
// session watcher, the desktop clock refresh).
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives the current time once
	// duration d has elapsed. If d <= 0 the channel receives
	// immediately.
	After(d time.Duration) <-chan time.Time

	// NewTicker returns a Ticker delivering ticks on C every d.
	// Panics if d <= 0, matching time.NewTicker.
	NewTicker(d time.Duration) *Ticker
}

// Ticker wraps a periodic timer. Read ticks from C; call Stop to
// release resources. C has capacity 1 — if the consumer falls behind,
// ticks are dropped rather than queued, matching time.Ticker.
type Ticker struct {
	C <-chan time.Time

	stopFunc func()
}

// Stop turns off the ticker. No more ticks arrive on C after Stop
// returns. Stop does not close C.
func (t *Ticker) Stop() { t.stopFunc() }
