// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fivebells implements [ledger.Adapter] for a five-bells
// ledger.
//
// The ledger exposes a REST API and a JSON-RPC 2.0 notification
// websocket. Connect reads the ledger's metadata document (address
// prefix, currency and endpoint URL templates), dials the websocket
// with HTTP basic authentication and subscribes to the local account.
// Notifications for transfers and messages become ledger events; a
// failed websocket read becomes an ErrorEvent and ends the stream.
//
// Accounts appear on the wire as URLs built from the ledger's account
// template ("https://ledger.example/accounts/:name"). The adapter maps
// between those URLs and ILP addresses below the ledger prefix.
package fivebells
