// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bureau-foundation/ledgerclient/lib/address"
	"github.com/bureau-foundation/ledgerclient/lib/money"
)

// TransferOption customizes a transfer built by BuildTransfer.
type TransferOption func(*Transfer)

// WithMemo attaches opaque memo data.
func WithMemo(memo []byte) TransferOption {
	return func(t *Transfer) { t.Memo = memo }
}

// WithID replaces the generated identifier. Used when replaying a
// transfer and in tests.
func WithID(id uuid.UUID) TransferOption {
	return func(t *Transfer) { t.ID = id }
}

// BuildTransfer validates user input and produces an authorized
// transfer from source to the account at toPath below the ledger
// prefix. The currency always comes from info.
//
// Malformed or escaping paths and a source outside the ledger yield
// *InvalidAddressError. Amounts that are not exact positive decimals
// within the currency's scale yield *InvalidAmountError.
func BuildTransfer(info Info, source address.Address, toPath, amount string, options ...TransferOption) (Transfer, error) {
	if !info.Prefix.IsPrefix() {
		return Transfer{}, &InvalidAddressError{
			Input: info.Prefix.String(),
			Err:   fmt.Errorf("ledger prefix must end in '.'"),
		}
	}
	if !source.Within(info.Prefix) {
		return Transfer{}, &InvalidAddressError{
			Input: source.String(),
			Err:   fmt.Errorf("source account is not on ledger %s", info.Prefix),
		}
	}

	destination, err := info.Prefix.Join(toPath)
	if err != nil {
		return Transfer{}, &InvalidAddressError{Input: toPath, Err: err}
	}

	value, err := money.Parse(amount, info.Currency, info.CurrencyScale())
	if err != nil {
		return Transfer{}, &InvalidAmountError{Input: amount, Err: err}
	}

	transfer := Transfer{
		ID:         uuid.New(),
		Ledger:     info.Prefix,
		From:       source,
		To:         destination,
		Amount:     value,
		Authorized: true,
	}
	for _, option := range options {
		option(&transfer)
	}
	return transfer, nil
}
