// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/bureau-foundation/ledgerclient/lib/address"
)

func usdLedger() Info {
	return Info{Prefix: address.MustParse("g.usd."), Currency: currency.USD}
}

var localAccount = address.MustParse("g.usd.bob")

func TestBuildTransfer(t *testing.T) {
	transfer, err := BuildTransfer(usdLedger(), localAccount, "alice", "10.50")
	if err != nil {
		t.Fatalf("BuildTransfer: %v", err)
	}

	if transfer.To.String() != "g.usd.alice" {
		t.Errorf("To = %s, want g.usd.alice", transfer.To)
	}
	if transfer.From != localAccount {
		t.Errorf("From = %s, want %s", transfer.From, localAccount)
	}
	if transfer.Ledger.String() != "g.usd." {
		t.Errorf("Ledger = %s, want g.usd.", transfer.Ledger)
	}
	if transfer.Amount.String() != "10.50 USD" {
		t.Errorf("Amount = %s, want 10.50 USD", transfer.Amount)
	}
	if transfer.Amount.Currency != currency.USD {
		t.Errorf("Currency = %s, want USD", transfer.Amount.Currency)
	}
	if !transfer.Authorized {
		t.Error("transfer should be authorized")
	}
	if transfer.ID == uuid.Nil {
		t.Error("transfer should have an id")
	}
	if transfer.Memo != nil {
		t.Errorf("Memo = %q, want nil", transfer.Memo)
	}
}

func TestBuildTransfer_FreshIDs(t *testing.T) {
	first, err := BuildTransfer(usdLedger(), localAccount, "alice", "1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildTransfer(usdLedger(), localAccount, "alice", "1")
	if err != nil {
		t.Fatal(err)
	}
	if first.ID == second.ID {
		t.Errorf("two transfers share id %s", first.ID)
	}
}

func TestBuildTransfer_Options(t *testing.T) {
	id := uuid.MustParse("3a2a1d9e-8640-4d2d-b06c-84f2cd613204")
	transfer, err := BuildTransfer(usdLedger(), localAccount, "alice.savings", "0.01",
		WithMemo([]byte("rent")), WithID(id))
	if err != nil {
		t.Fatalf("BuildTransfer: %v", err)
	}
	if transfer.ID != id {
		t.Errorf("ID = %s, want %s", transfer.ID, id)
	}
	if string(transfer.Memo) != "rent" {
		t.Errorf("Memo = %q, want rent", transfer.Memo)
	}
	if transfer.To.String() != "g.usd.alice.savings" {
		t.Errorf("To = %s, want g.usd.alice.savings", transfer.To)
	}

	want := "transfer 3a2a1d9e-8640-4d2d-b06c-84f2cd613204: g.usd.bob -> g.usd.alice.savings 0.01 USD authorized"
	if transfer.String() != want {
		t.Errorf("String() = %q, want %q", transfer.String(), want)
	}
}

func TestBuildTransfer_InvalidAddress(t *testing.T) {
	paths := []string{
		"",
		"..",
		"../carol",
		"alice..carol",
		"alice/../carol",
		"alice/bob",
		`alice\bob`,
		".alice",
		"alice.",
		"alice bob",
		"alice@example",
		strings.Repeat("a", 1100),
	}

	for _, path := range paths {
		name := path
		if len(name) > 20 {
			name = name[:20] + "..."
		}
		t.Run(name, func(t *testing.T) {
			_, err := BuildTransfer(usdLedger(), localAccount, path, "10.00")
			var addressErr *InvalidAddressError
			if !errors.As(err, &addressErr) {
				t.Fatalf("BuildTransfer(%q) error = %v, want *InvalidAddressError", path, err)
			}
			if addressErr.Input != path {
				t.Errorf("Input = %q, want %q", addressErr.Input, path)
			}
		})
	}
}

func TestBuildTransfer_TraversalMessage(t *testing.T) {
	_, err := BuildTransfer(usdLedger(), localAccount, "../carol", "1")
	if err == nil || !strings.Contains(err.Error(), "traversal") {
		t.Errorf("error = %v, want it to mention traversal", err)
	}
}

func TestBuildTransfer_SourceOutsideLedger(t *testing.T) {
	_, err := BuildTransfer(usdLedger(), address.MustParse("g.eur.bob"), "alice", "1")
	var addressErr *InvalidAddressError
	if !errors.As(err, &addressErr) {
		t.Fatalf("error = %v, want *InvalidAddressError", err)
	}
	if addressErr.Input != "g.eur.bob" {
		t.Errorf("Input = %q, want g.eur.bob", addressErr.Input)
	}
}

func TestBuildTransfer_InvalidAmount(t *testing.T) {
	amounts := []string{
		"",
		"abc",
		"-1",
		"-0.50",
		"0",
		"0.00",
		"1e3",
		"1E-2",
		"10.555",
		"0.001",
		"1,000",
		" 10",
		"10 ",
		"+5",
		".5",
		"5.",
		"NaN",
		"Infinity",
	}

	for _, amount := range amounts {
		t.Run(amount, func(t *testing.T) {
			_, err := BuildTransfer(usdLedger(), localAccount, "alice", amount)
			var amountErr *InvalidAmountError
			if !errors.As(err, &amountErr) {
				t.Fatalf("BuildTransfer(amount=%q) error = %v, want *InvalidAmountError", amount, err)
			}
		})
	}
}

func TestBuildTransfer_ValidAmounts(t *testing.T) {
	tests := []struct {
		info   Info
		amount string
		want   string
	}{
		{usdLedger(), "10.50", "10.50 USD"},
		{usdLedger(), "10.5", "10.50 USD"},
		{usdLedger(), "10", "10.00 USD"},
		{usdLedger(), "0.01", "0.01 USD"},
		{usdLedger(), "007", "7.00 USD"},
		{usdLedger(), "123456789012345678901234567890.99", "123456789012345678901234567890.99 USD"},
		{Info{Prefix: address.MustParse("g.jpy."), Currency: currency.JPY}, "500", "500 JPY"},
		{Info{Prefix: address.MustParse("g.usd."), Currency: currency.USD, Scale: intPointer(4)}, "1.2345", "1.2345 USD"},
		{Info{Prefix: address.MustParse("g.usd."), Currency: currency.USD, Scale: intPointer(0)}, "15", "15 USD"},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			source, err := tt.info.Prefix.Join("bob")
			if err != nil {
				t.Fatal(err)
			}
			transfer, err := BuildTransfer(tt.info, source, "alice", tt.amount)
			if err != nil {
				t.Fatalf("BuildTransfer(amount=%q): %v", tt.amount, err)
			}
			if got := transfer.Amount.String(); got != tt.want {
				t.Errorf("Amount = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestBuildTransfer_ZeroScaleRejectsFraction(t *testing.T) {
	info := Info{Prefix: address.MustParse("g.jpy."), Currency: currency.JPY}
	_, err := BuildTransfer(info, address.MustParse("g.jpy.bob"), "alice", "100.5")
	var amountErr *InvalidAmountError
	if !errors.As(err, &amountErr) {
		t.Fatalf("error = %v, want *InvalidAmountError", err)
	}
}

func TestBuildTransfer_StatedZeroScale(t *testing.T) {
	info := Info{Prefix: address.MustParse("g.usd."), Currency: currency.USD, Scale: intPointer(0)}
	if got := info.CurrencyScale(); got != 0 {
		t.Fatalf("CurrencyScale() = %d, want 0", got)
	}
	_, err := BuildTransfer(info, address.MustParse("g.usd.bob"), "alice", "1.50")
	var amountErr *InvalidAmountError
	if !errors.As(err, &amountErr) {
		t.Fatalf("error = %v, want *InvalidAmountError", err)
	}
}

func TestBuildTransfer_RejectsDigitsBeyondScale(t *testing.T) {
	for _, amount := range []string{"10.500", "10.001", "0.000"} {
		_, err := BuildTransfer(usdLedger(), address.MustParse("g.usd.bob"), "alice", amount)
		var amountErr *InvalidAmountError
		if !errors.As(err, &amountErr) {
			t.Errorf("BuildTransfer(amount=%q) error = %v, want *InvalidAmountError", amount, err)
		}
	}
}

func intPointer(value int) *int { return &value }

func TestTransferErrorMessages(t *testing.T) {
	id := uuid.MustParse("3a2a1d9e-8640-4d2d-b06c-84f2cd613204")
	cause := errors.New("connection refused")

	tests := []struct {
		err  *TransferError
		want string
	}{
		{&TransferError{ID: id, Status: 422, Message: "insufficient funds"},
			"transfer 3a2a1d9e-8640-4d2d-b06c-84f2cd613204 rejected (422): insufficient funds"},
		{&TransferError{ID: id, Status: 500},
			"transfer 3a2a1d9e-8640-4d2d-b06c-84f2cd613204 rejected (500)"},
		{&TransferError{Message: "recipient unknown"},
			"ledger request rejected: recipient unknown"},
		{&TransferError{ID: id, Err: cause},
			"transfer 3a2a1d9e-8640-4d2d-b06c-84f2cd613204 failed: connection refused"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	if !errors.Is(&TransferError{Err: cause}, cause) {
		t.Error("TransferError should unwrap to its cause")
	}
}
