// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time source.
//
// Code that measures durations or runs periodic work takes a [Clock]
// instead of calling time.Now or time.NewTicker. Production wiring
// passes [Real]; tests pass [Fake], which stands still until Advance
// is called:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	dispatcher := cli.NewDispatcher(registry, out, logger, c, nil)
//	c.Advance(250 * time.Millisecond)
//
// Tickers created on a fake clock fire during Advance. WaitForTickers
// closes the race between a goroutine creating a ticker and the test
// advancing time.
package clock
