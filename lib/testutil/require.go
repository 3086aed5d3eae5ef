// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"fmt"
	"testing"
	"time"
)

// RequireReceive returns the next value from ch, failing the test if
// ch is closed or nothing arrives within timeout. format and args
// describe what the test was waiting for.
//
//	event := testutil.RequireReceive(t, adapter.Events(), 5*time.Second, "waiting for connect event")
func RequireReceive[T any](t testing.TB, ch <-chan T, timeout time.Duration, format string, args ...any) T {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case value, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed while %s", fmt.Sprintf(format, args...))
		}
		return value
	case <-timer.C:
		t.Fatalf("timed out after %v %s", timeout, fmt.Sprintf(format, args...))
	}
	panic("unreachable")
}

// RequireClosed drains ch until it is closed, failing the test if that
// takes longer than timeout.
func RequireClosed[T any](t testing.TB, ch <-chan T, timeout time.Duration, format string, args ...any) {
	t.Helper()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timer.C:
			t.Fatalf("timed out after %v waiting for close: %s", timeout, fmt.Sprintf(format, args...))
			return
		}
	}
}
