// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec provides the client's standard CBOR configuration.
//
// Ledger messages travel as JSON by default. When a ledger is
// configured with message_format: cbor, envelopes are exchanged as
// CBOR instead, and every package that touches them encodes through
// this package so the bytes are identical regardless of caller. The
// encoder uses Core Deterministic Encoding: the same envelope always
// produces the same bytes, which keeps payload digests stable.
//
//	data, err := codec.Marshal(value)
//	err = codec.Unmarshal(data, &value)
//
// Types shared between the JSON and CBOR formats carry only `json`
// struct tags; fxamacker/cbor reads them as a fallback when `cbor`
// tags are absent.
package codec
