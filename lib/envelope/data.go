// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envelope

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/bureau-foundation/ledgerclient/lib/codec"
)

// DataText renders an envelope's data for a log line, best effort. A
// string value is shown as its text, or as the bytes it carries when
// it is base64 of valid UTF-8. Byte strings are shown as text. Any
// other value is shown as compact JSON or CBOR diagnostic notation.
// Data that cannot be parsed falls back to [Text].
func DataText(format Format, data []byte) string {
	switch format {
	case JSON:
		var text string
		if err := json.Unmarshal(data, &text); err == nil {
			return unwrapBase64(text)
		}
		if json.Valid(data) {
			var compacted bytes.Buffer
			if err := json.Compact(&compacted, data); err == nil {
				return Text(compacted.Bytes())
			}
		}
	case CBOR:
		if codec.Wellformed(data) == nil {
			var value any
			if err := codec.Unmarshal(data, &value); err == nil {
				switch value := value.(type) {
				case string:
					return unwrapBase64(value)
				case []byte:
					return Text(value)
				}
			}
			if diagnostic, err := codec.Diagnose(data); err == nil {
				return diagnostic
			}
		}
	}
	return Text(data)
}

// unwrapBase64 returns what text encodes when it is standard base64 of
// valid UTF-8, and text itself otherwise.
func unwrapBase64(text string) string {
	if text == "" || len(text)%4 != 0 {
		return text
	}
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil || !utf8.Valid(decoded) {
		return text
	}
	return string(decoded)
}

// DataFromText builds envelope data from text typed at the prompt. A
// JSON document becomes that structured value; anything else becomes a
// string.
func DataFromText(format Format, text string) ([]byte, error) {
	structured := json.Valid([]byte(text))

	switch format {
	case JSON:
		if structured && text != "null" {
			var compacted bytes.Buffer
			if err := json.Compact(&compacted, []byte(text)); err != nil {
				return nil, err
			}
			return compacted.Bytes(), nil
		}
		return marshalJSON(text)
	case CBOR:
		if structured && text != "null" {
			decoder := json.NewDecoder(bytes.NewReader([]byte(text)))
			decoder.UseNumber()
			var value any
			if err := decoder.Decode(&value); err != nil {
				return nil, err
			}
			return codec.Marshal(fromJSON(value))
		}
		return codec.Marshal(text)
	default:
		return nil, fmt.Errorf("unknown message format %q", format)
	}
}

// fromJSON replaces json.Number with int64 or float64 so numbers
// encode as CBOR numbers rather than text.
func fromJSON(value any) any {
	switch value := value.(type) {
	case json.Number:
		if integer, err := value.Int64(); err == nil {
			return integer
		}
		float, _ := value.Float64()
		return float
	case map[string]any:
		for key, element := range value {
			value[key] = fromJSON(element)
		}
		return value
	case []any:
		for i, element := range value {
			value[i] = fromJSON(element)
		}
		return value
	default:
		return value
	}
}
