// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package money

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// maxInputLength bounds the raw amount string. Ledger amounts never
// need more digits than this and the bound keeps hostile input cheap.
const maxInputLength = 64

// plainDecimal is the only accepted amount syntax: digits with an
// optional fractional part. Exponents, signs and separators are not
// accepted.
var plainDecimal = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// Amount is an exact quantity of a currency.
type Amount struct {
	// Value is the exact decimal quantity.
	Value decimal.Decimal

	// Currency is the ISO 4217 unit.
	Currency currency.Unit

	// Scale is the number of minor-unit digits used when formatting.
	Scale int
}

// ParseCurrency parses an ISO 4217 code such as "USD".
func ParseCurrency(code string) (currency.Unit, error) {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return currency.Unit{}, fmt.Errorf("unknown currency %q: %w", code, err)
	}
	return unit, nil
}

// StandardScale returns the number of minor-unit digits ISO 4217
// defines for unit (2 for USD, 0 for JPY, 3 for KWD).
func StandardScale(unit currency.Unit) int {
	scale, _ := currency.Standard.Rounding(unit)
	return scale
}

// Parse converts raw into an Amount of unit with at most scale
// fractional digits as written. Trailing zeros count, so "10.500" is
// rejected for a currency with two minor-unit digits.
func Parse(raw string, unit currency.Unit, scale int) (Amount, error) {
	if scale < 0 {
		return Amount{}, fmt.Errorf("currency %s has negative scale %d", unit, scale)
	}
	if raw == "" {
		return Amount{}, fmt.Errorf("amount is empty")
	}
	if len(raw) > maxInputLength {
		return Amount{}, fmt.Errorf("amount is %d characters, maximum is %d", len(raw), maxInputLength)
	}
	if strings.HasPrefix(raw, "-") {
		if plainDecimal.MatchString(raw[1:]) {
			return Amount{}, fmt.Errorf("amount %s is negative", raw)
		}
		return Amount{}, fmt.Errorf("amount %q is not a decimal number", raw)
	}
	if !plainDecimal.MatchString(raw) {
		return Amount{}, fmt.Errorf("amount %q is not a decimal number", raw)
	}

	value, err := decimal.NewFromString(raw)
	if err != nil {
		return Amount{}, fmt.Errorf("amount %q is not a decimal number: %w", raw, err)
	}
	if !value.IsPositive() {
		return Amount{}, fmt.Errorf("amount %s must be greater than zero", raw)
	}
	if -value.Exponent() > int32(scale) {
		return Amount{}, fmt.Errorf("amount %s has more than %d fractional digits for %s", raw, scale, unit)
	}

	return Amount{Value: value, Currency: unit, Scale: scale}, nil
}

// Text returns the value at the currency's scale, for example "10.50".
func (a Amount) Text() string {
	return a.Value.StringFixed(int32(a.Scale))
}

// String returns the value and currency code, for example "10.50 USD".
func (a Amount) String() string {
	return a.Text() + " " + a.Currency.String()
}

// Equal reports whether a and b are the same quantity of the same
// currency. Scale is a formatting detail and does not participate.
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Value.Equal(b.Value)
}

// Info describes one currency for listings.
type Info struct {
	Code  string
	Scale int
}

// Describe resolves each ISO code into its standard scale. Unknown
// codes are reported together.
func Describe(codes []string) ([]Info, error) {
	infos := make([]Info, 0, len(codes))
	var unknown []string
	for _, code := range codes {
		unit, err := currency.ParseISO(code)
		if err != nil {
			unknown = append(unknown, code)
			continue
		}
		infos = append(infos, Info{Code: unit.String(), Scale: StandardScale(unit)})
	}
	if len(unknown) > 0 {
		return infos, fmt.Errorf("unknown currencies: %s", strings.Join(unknown, ", "))
	}
	return infos, nil
}
