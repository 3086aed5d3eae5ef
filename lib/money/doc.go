// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package money parses and formats monetary amounts without rounding.
//
// An [Amount] pairs an exact decimal value (shopspring/decimal) with an
// ISO 4217 currency unit (golang.org/x/text/currency) and the number of
// minor-unit digits the ledger settles in. [Parse] is strict: it
// accepts only plain decimal notation, rejects negative and zero
// values, and refuses values that cannot be represented at the
// currency's scale. Nothing in this package rounds.
package money
