// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands defines the ledger client's session commands:
// transfer, message, info, currencies, version and help. [NewRegistry]
// binds them to a connected ledger adapter and returns the registry the
// dispatcher and session share.
package commands
