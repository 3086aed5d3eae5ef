// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ledger is the client's boundary with an Interledger ledger.
//
// An [Adapter] connects to one ledger on behalf of one local account.
// Outgoing work (transfers and messages) goes through explicit method
// calls; everything the ledger reports back arrives as an [Event] on
// the adapter's channel. Events form a closed set of four variants:
// [ConnectEvent], [TransferEvent], [MessageEvent] and [ErrorEvent].
//
// [BuildTransfer] turns untrusted user input (a destination path and a
// decimal amount) into a validated [Transfer] scoped to the ledger's
// address prefix and currency. [Router] consumes the event channel and
// turns each event into log lines and metrics without ever failing.
//
// Two adapters exist: [Loopback] in this package is an in-process
// ledger for offline sessions and tests, and package fivebells talks
// to a five-bells ledger over HTTP and a websocket.
package ledger
