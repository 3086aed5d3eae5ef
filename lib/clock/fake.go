// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// FakeClock is a deterministic Clock. Time moves only when Advance is
// called. Safe for concurrent use.
type FakeClock struct {
	mu      sync.Mutex
	current time.Time
	tickers []*fakeTicker
	changed *sync.Cond
}

type fakeTicker struct {
	channel  chan time.Time
	next     time.Time
	interval time.Duration
	stopped  bool
}

// Fake returns a FakeClock set to initial.
func Fake(initial time.Time) *FakeClock {
	clock := &FakeClock{current: initial}
	clock.changed = sync.NewCond(&clock.mu)
	return clock
}

// Now returns the fake time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NewTicker registers a ticker that fires during Advance.
func (c *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive interval for NewTicker")
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	ticker := &fakeTicker{
		channel:  make(chan time.Time, 1),
		next:     c.current.Add(d),
		interval: d,
	}
	c.tickers = append(c.tickers, ticker)
	c.changed.Broadcast()

	return &Ticker{
		C:    ticker.channel,
		stop: func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			ticker.stopped = true
			c.changed.Broadcast()
		},
	}
}

// Advance moves the clock forward by d and fires every ticker whose
// next deadline falls inside the new time, once per elapsed interval.
// Sends never block; ticks that overflow C are dropped.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.current = c.current.Add(d)
	for _, ticker := range c.tickers {
		for !ticker.stopped && !ticker.next.After(c.current) {
			select {
			case ticker.channel <- ticker.next:
			default:
			}
			ticker.next = ticker.next.Add(ticker.interval)
		}
	}
}

// WaitForTickers blocks until at least n tickers are active.
func (c *FakeClock) WaitForTickers(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for c.activeLocked() < n {
		c.changed.Wait()
	}
}

func (c *FakeClock) activeLocked() int {
	count := 0
	for _, ticker := range c.tickers {
		if !ticker.stopped {
			count++
		}
	}
	return count
}
