// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package version reports build information for the ledger-client
// binary. GitCommit, BuildTime and Version are injected with -ldflags:
//
//	go build -ldflags "-X github.com/bureau-foundation/ledgerclient/lib/version.GitCommit=$(git rev-parse --short HEAD)" ./cmd/ledger-client
//
// Development builds report "unknown" and "0.1.0-dev".
package version
