// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"reflect"

	"github.com/fxamacker/cbor/v2"
)

// encMode is the CBOR encoder configured with Core Deterministic
// Encoding (RFC 8949 §4.2): sorted map keys, smallest integer
// encoding, no indefinite-length items.
var encMode cbor.EncMode

// decMode accepts standard CBOR. Unknown fields are silently ignored
// so that newer peers can add envelope fields.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// address.Address and similar value types serialize through
	// MarshalText as CBOR text strings rather than empty maps.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("codec: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		// any-typed targets decode maps as map[string]any so values
		// can be handed to encoding/json and log attributes.
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
		// A payload is exactly one data item; trailing bytes mean
		// a truncated or concatenated message.
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}.DecMode()
	if err != nil {
		panic("codec: CBOR decoder initialization failed: " + err.Error())
	}
}

// Marshal encodes v to CBOR using Core Deterministic Encoding.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes exactly one CBOR data item from data into v.
// Trailing bytes after the item are an error.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// Wellformed reports whether data is a single well-formed CBOR item
// without decoding it into a Go value.
func Wellformed(data []byte) error {
	return decMode.Wellformed(data)
}

// Diagnose returns the CBOR diagnostic notation (RFC 8949 §8) for
// data. Used to render binary payloads in log lines.
func Diagnose(data []byte) (string, error) {
	return cbor.Diagnose(data)
}

// RawMessage is a CBOR data item kept in its encoded form. It delays
// decoding of a field whose shape the receiver does not know.
type RawMessage = cbor.RawMessage
