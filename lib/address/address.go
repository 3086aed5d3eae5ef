// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package address

import (
	"fmt"
	"strings"
)

// MaxLength is the maximum length of an Interledger address in bytes.
const MaxLength = 1023

// separator joins address segments.
const separator = '.'

// allowedChars is the set of characters permitted inside a segment.
var allowedChars [256]bool

func init() {
	for c := byte('a'); c <= 'z'; c++ {
		allowedChars[c] = true
	}
	for c := byte('A'); c <= 'Z'; c++ {
		allowedChars[c] = true
	}
	for c := byte('0'); c <= '9'; c++ {
		allowedChars[c] = true
	}
	allowedChars['_'] = true
	allowedChars['~'] = true
	allowedChars['-'] = true
}

// Address is a validated Interledger address or prefix. It is an
// immutable value type; the zero value is not valid (see IsZero).
type Address struct {
	value string
}

// Parse validates raw as an address or a prefix. A trailing '.' makes
// the result a prefix.
func Parse(raw string) (Address, error) {
	if raw == "" {
		return Address{}, fmt.Errorf("address is empty")
	}
	if len(raw) > MaxLength {
		return Address{}, fmt.Errorf("address is %d bytes, maximum is %d", len(raw), MaxLength)
	}
	body := strings.TrimSuffix(raw, string(separator))
	if err := validateSegments(body, "address"); err != nil {
		return Address{}, err
	}
	return Address{value: raw}, nil
}

// ParsePrefix validates raw as a ledger prefix. The trailing '.' is
// added when missing, so "g.usd" and "g.usd." name the same prefix.
func ParsePrefix(raw string) (Address, error) {
	if raw != "" && raw[len(raw)-1] != separator {
		raw += string(separator)
	}
	return Parse(raw)
}

// MustParse is Parse for constants in tests and static tables. Panics
// on invalid input.
func MustParse(raw string) Address {
	a, err := Parse(raw)
	if err != nil {
		panic(fmt.Sprintf("address.MustParse(%q): %v", raw, err))
	}
	return a
}

// Join resolves a relative path below the prefix a. The path uses the
// same '.' separator as addresses ("alice" or "alice.savings").
//
// The path is untrusted: Join rejects an empty path, ".." segments,
// leading, trailing or doubled separators, '/' and '\' separators, and
// characters outside the segment alphabet. The result is guaranteed to
// have a as a strict prefix.
func (a Address) Join(path string) (Address, error) {
	if !a.IsPrefix() {
		return Address{}, fmt.Errorf("cannot join %q onto %q: not a prefix", path, a.value)
	}
	if path == "" {
		return Address{}, fmt.Errorf("path is empty")
	}
	if strings.ContainsAny(path, "/\\") {
		if hasTraversal(path) {
			return Address{}, fmt.Errorf("path %q contains '..' segment (path traversal)", path)
		}
		return Address{}, fmt.Errorf("path %q must use '.' as the segment separator", path)
	}
	if err := validateSegments(path, "path"); err != nil {
		return Address{}, err
	}

	joined := a.value + path
	if len(joined) > MaxLength {
		return Address{}, fmt.Errorf("address %q is %d bytes, maximum is %d", joined, len(joined), MaxLength)
	}
	result := Address{value: joined}
	if !result.Within(a) {
		return Address{}, fmt.Errorf("path %q escapes prefix %q", path, a.value)
	}
	return result, nil
}

// Within reports whether a lies strictly below prefix. An address is
// not within itself.
func (a Address) Within(prefix Address) bool {
	if !prefix.IsPrefix() || len(a.value) <= len(prefix.value) {
		return false
	}
	return strings.HasPrefix(a.value, prefix.value)
}

// Relative returns the part of a below prefix, or an error when a is
// not within prefix.
func (a Address) Relative(prefix Address) (string, error) {
	if !a.Within(prefix) {
		return "", fmt.Errorf("address %q is not within prefix %q", a.value, prefix.value)
	}
	return a.value[len(prefix.value):], nil
}

// IsPrefix reports whether a is a prefix (ends in '.').
func (a Address) IsPrefix() bool {
	return a.value != "" && a.value[len(a.value)-1] == separator
}

// IsZero reports whether a is the zero value.
func (a Address) IsZero() bool { return a.value == "" }

// String returns the address in its canonical form.
func (a Address) String() string { return a.value }

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	if a.value == "" {
		return nil, fmt.Errorf("cannot marshal zero Address")
	}
	return []byte(a.value), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(data []byte) error {
	parsed, err := Parse(string(data))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// validateSegments checks every '.'-separated segment of value.
func validateSegments(value, label string) error {
	if value == "" {
		return fmt.Errorf("%s has no segments", label)
	}
	if hasTraversal(value) {
		return fmt.Errorf("%s %q contains '..' segment (path traversal)", label, value)
	}
	if value[0] == separator {
		return fmt.Errorf("%s %q must not start with '.'", label, value)
	}
	if value[len(value)-1] == separator {
		return fmt.Errorf("%s %q must not end with '.'", label, value)
	}
	for _, segment := range strings.Split(value, string(separator)) {
		if segment == "" {
			return fmt.Errorf("%s %q contains empty segment", label, value)
		}
		for i := 0; i < len(segment); i++ {
			if !allowedChars[segment[i]] {
				return fmt.Errorf("%s segment %q: invalid character %q (allowed: a-z, A-Z, 0-9, _, ~, -)", label, segment, segment[i])
			}
		}
	}
	return nil
}

// hasTraversal reports whether value contains a ".." sequence in any
// separator convention.
func hasTraversal(value string) bool {
	return strings.Contains(value, "..")
}
