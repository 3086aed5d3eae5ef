// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock is the time source for command timing and the five-bells
// keepalive.
type Clock interface {
	Now() time.Time

	// NewTicker returns a Ticker firing every d. Panics if d <= 0.
	NewTicker(d time.Duration) *Ticker
}

// Ticker delivers ticks on C, which holds at most one pending tick.
// A consumer that falls behind misses ticks rather than queueing them.
type Ticker struct {
	C <-chan time.Time

	stop func()
}

// Stop turns off the ticker without closing C.
func (t *Ticker) Stop() { t.stop() }

// Real returns the wall clock.
func Real() Clock { return wallClock{} }

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

func (wallClock) NewTicker(d time.Duration) *Ticker {
	ticker := time.NewTicker(d)
	return &Ticker{C: ticker.C, stop: ticker.Stop}
}
