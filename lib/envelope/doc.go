// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envelope decodes and encodes the inner message format
// exchanged over a ledger's messaging channel.
//
// An [Envelope] carries an identifier, an optional method name, and a
// nested data value. Two wire formats implement [Codec]: [JSON], the
// default, and [CBOR]. The data value may be any non-null value of the
// format (an object, a string, base64 text, a byte string) and is kept
// in its encoded form. Decoding is strict about the envelope itself
// (well-formed syntax, field types, required fields, no trailing bytes)
// and lenient about content: unknown fields are ignored so peers can
// extend the envelope.
//
// Every decode failure is a [*DecodeError]. Payload bytes come from the
// network, so decoding never panics on any input.
//
// [Text], [DataText] and [Digest] render payloads for log lines.
// [DataFromText] builds a data value from text typed at the prompt.
package envelope
