// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides helpers shared by the client's tests.
//
// [RequireReceive] and [RequireClosed] wait on a channel with a
// wall-clock bound so a missing event fails the test instead of
// hanging it. Everything else in the suite runs on [clock.Fake].
//
// [LogBuffer] is an io.Writer for a slog JSON handler. It accepts
// concurrent writes from the event router and the session and parses
// the captured lines back into maps for assertions.
//
// [clock.Fake]: github.com/bureau-foundation/ledgerclient/lib/clock.Fake
package testutil
