// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metrics records client activity as Prometheus metrics.
//
// A [Recorder] owns a private registry, so tests and multiple clients
// in one process never collide on the global default registerer. All
// methods are safe on a nil *Recorder, which records nothing: callers
// that run without a metrics endpoint pass nil instead of branching.
package metrics
