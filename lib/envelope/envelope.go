// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/zeebo/blake3"

	"github.com/bureau-foundation/ledgerclient/lib/codec"
)

// Envelope is the structured form of a ledger message payload.
type Envelope struct {
	// ID identifies the message. Required, non-empty and valid UTF-8.
	ID string

	// Method names the application operation, when the sender sets one.
	Method string

	// Data is the nested payload as one encoded value in the codec's
	// format: a JSON document for [JSON], a CBOR data item for [CBOR].
	// Required and never null. JSON data is kept compact.
	Data []byte
}

// Equal reports whether e and other carry the same fields.
func (e Envelope) Equal(other Envelope) bool {
	return e.ID == other.ID && e.Method == other.Method && bytes.Equal(e.Data, other.Data)
}

// LogValue renders the envelope as a log group without the payload.
func (e Envelope) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("id", e.ID)}
	if e.Method != "" {
		attrs = append(attrs, slog.String("method", e.Method))
	}
	attrs = append(attrs, slog.Int("data_size", len(e.Data)))
	return slog.GroupValue(attrs...)
}

// jsonEnvelope and cborEnvelope distinguish absent fields from zero
// values.
type jsonEnvelope struct {
	ID     *string         `json:"id"`
	Method string          `json:"method,omitempty"`
	Data   json.RawMessage `json:"data"`
}

type cborEnvelope struct {
	ID     *string          `cbor:"id"`
	Method string           `cbor:"method,omitempty"`
	Data   codec.RawMessage `cbor:"data"`
}

// Format names a wire format.
type Format string

const (
	// JSON is the ledger messaging channel's native format.
	JSON Format = "json"
	// CBOR is the compact binary format.
	CBOR Format = "cbor"
)

// ParseFormat validates a format name from configuration.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(name)) {
	case JSON, "":
		return JSON, nil
	case CBOR:
		return CBOR, nil
	default:
		return "", fmt.Errorf("unknown message format %q (want json or cbor)", name)
	}
}

// Codec converts envelopes to and from one wire format.
type Codec interface {
	Format() Format
	Decode(data []byte) (Envelope, error)
	Encode(envelope Envelope) ([]byte, error)
}

// For returns the codec for format.
func For(format Format) (Codec, error) {
	switch format {
	case JSON:
		return jsonCodec{}, nil
	case CBOR:
		return cborCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown message format %q", format)
	}
}

// Decode decodes a JSON envelope.
func Decode(data []byte) (Envelope, error) {
	return jsonCodec{}.Decode(data)
}

// Encode encodes a JSON envelope.
func Encode(envelope Envelope) ([]byte, error) {
	return jsonCodec{}.Encode(envelope)
}

// cborNull and cborUndefined are the one-byte CBOR simple values that
// cannot stand in for a payload.
const (
	cborNull      = 0xf6
	cborUndefined = 0xf7
)

type jsonCodec struct{}

func (jsonCodec) Format() Format { return JSON }

func (jsonCodec) Decode(data []byte) (Envelope, error) {
	var wire jsonEnvelope
	if err := json.Unmarshal(data, &wire); err != nil {
		return Envelope{}, &DecodeError{Format: JSON, Err: err}
	}
	if err := checkID(JSON, wire.ID); err != nil {
		return Envelope{}, err
	}
	if len(wire.Data) == 0 {
		return Envelope{}, &DecodeError{Format: JSON, Field: "data", Err: errMissing}
	}
	if string(wire.Data) == "null" {
		return Envelope{}, &DecodeError{Format: JSON, Field: "data", Err: errNull}
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, wire.Data); err != nil {
		return Envelope{}, &DecodeError{Format: JSON, Field: "data", Err: err}
	}
	return Envelope{ID: *wire.ID, Method: wire.Method, Data: compacted.Bytes()}, nil
}

func (jsonCodec) Encode(envelope Envelope) ([]byte, error) {
	if err := checkText(envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 || !json.Valid(envelope.Data) {
		return nil, errors.New("envelope: data must be one JSON value")
	}
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, envelope.Data); err != nil {
		return nil, fmt.Errorf("envelope: data: %w", err)
	}
	if !bytes.Equal(compacted.Bytes(), envelope.Data) {
		return nil, errors.New("envelope: data must be compact JSON")
	}
	if string(envelope.Data) == "null" {
		return nil, errors.New("envelope: data must not be null")
	}
	id := envelope.ID
	return marshalJSON(jsonEnvelope{ID: &id, Method: envelope.Method, Data: envelope.Data})
}

type cborCodec struct{}

func (cborCodec) Format() Format { return CBOR }

func (cborCodec) Decode(data []byte) (Envelope, error) {
	var wire cborEnvelope
	if err := codec.Unmarshal(data, &wire); err != nil {
		return Envelope{}, &DecodeError{Format: CBOR, Err: err}
	}
	if err := checkID(CBOR, wire.ID); err != nil {
		return Envelope{}, err
	}
	if len(wire.Data) == 0 {
		return Envelope{}, &DecodeError{Format: CBOR, Field: "data", Err: errMissing}
	}
	if isCBORNull(wire.Data) {
		return Envelope{}, &DecodeError{Format: CBOR, Field: "data", Err: errNull}
	}
	return Envelope{ID: *wire.ID, Method: wire.Method, Data: bytes.Clone(wire.Data)}, nil
}

func (cborCodec) Encode(envelope Envelope) ([]byte, error) {
	if err := checkText(envelope); err != nil {
		return nil, err
	}
	if len(envelope.Data) == 0 {
		return nil, errors.New("envelope: data must be one CBOR data item")
	}
	if err := codec.Wellformed(envelope.Data); err != nil {
		return nil, fmt.Errorf("envelope: data must be one CBOR data item: %w", err)
	}
	if isCBORNull(envelope.Data) {
		return nil, errors.New("envelope: data must not be null")
	}
	id := envelope.ID
	return codec.Marshal(cborEnvelope{ID: &id, Method: envelope.Method, Data: envelope.Data})
}

func isCBORNull(data []byte) bool {
	return len(data) == 1 && (data[0] == cborNull || data[0] == cborUndefined)
}

// checkText rejects envelopes whose text fields a decoder would not
// return unchanged.
func checkText(envelope Envelope) error {
	if envelope.ID == "" {
		return errors.New("envelope: cannot encode envelope with empty id")
	}
	if !utf8.ValidString(envelope.ID) {
		return errors.New("envelope: id is not valid UTF-8")
	}
	if !utf8.ValidString(envelope.Method) {
		return errors.New("envelope: method is not valid UTF-8")
	}
	return nil
}

func checkID(format Format, id *string) error {
	if id == nil {
		return &DecodeError{Format: format, Field: "id", Err: errMissing}
	}
	if *id == "" {
		return &DecodeError{Format: format, Field: "id", Err: errors.New("must not be empty")}
	}
	return nil
}

// marshalJSON encodes v without HTML escaping, so raw data passes
// through byte for byte.
func marshalJSON(v any) ([]byte, error) {
	var buffer bytes.Buffer
	encoder := json.NewEncoder(&buffer)
	encoder.SetEscapeHTML(false)
	if err := encoder.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buffer.Bytes(), []byte("\n")), nil
}

var (
	errMissing = errors.New("required field is missing")
	errNull    = errors.New("must not be null")
)

// DecodeError reports a payload that is not a well-formed envelope.
type DecodeError struct {
	// Format is the wire format the decoder expected.
	Format Format

	// Field names the offending field for structural problems, empty
	// for syntax and type errors.
	Field string

	// Err is the underlying cause.
	Err error
}

func (e *DecodeError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("envelope: decode %s: field %q: %v", e.Format, e.Field, e.Err)
	}
	return fmt.Sprintf("envelope: decode %s: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Text converts payload bytes to text for display. Invalid UTF-8
// sequences become U+FFFD; the result is never used for decoding.
func Text(data []byte) string {
	return strings.ToValidUTF8(string(data), "�")
}

// Digest returns a short BLAKE3 digest of data for correlating
// payloads across log lines.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
