// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrClosed is returned by adapter operations after Close.
var ErrClosed = errors.New("ledger: adapter closed")

// InvalidAddressError reports a destination or source address that
// is malformed or outside the ledger's prefix.
type InvalidAddressError struct {
	// Input is the rejected address or path as the caller supplied it.
	Input string
	Err   error
}

func (e *InvalidAddressError) Error() string {
	return fmt.Sprintf("invalid address %q: %v", e.Input, e.Err)
}

func (e *InvalidAddressError) Unwrap() error { return e.Err }

// InvalidAmountError reports an amount that is not an exact positive
// decimal representable in the ledger's currency.
type InvalidAmountError struct {
	Input string
	Err   error
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("invalid amount %q: %v", e.Input, e.Err)
}

func (e *InvalidAmountError) Unwrap() error { return e.Err }

// TransferError reports a transfer or message the ledger refused or
// could not be reached for.
//
//	var transferErr *TransferError
//	if errors.As(err, &transferErr) && transferErr.Status == 422 { ... }
type TransferError struct {
	// ID is the transfer's identifier; uuid.Nil for messages.
	ID uuid.UUID

	// Status is the ledger's HTTP status code, zero when the request
	// never produced a response.
	Status int

	// Message is the ledger's explanation, when it gave one.
	Message string

	Err error
}

func (e *TransferError) Error() string {
	subject := "ledger request"
	if e.ID != uuid.Nil {
		subject = "transfer " + e.ID.String()
	}
	switch {
	case e.Status != 0 && e.Message != "":
		return fmt.Sprintf("%s rejected (%d): %s", subject, e.Status, e.Message)
	case e.Status != 0:
		return fmt.Sprintf("%s rejected (%d)", subject, e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s rejected: %s", subject, e.Message)
	default:
		return fmt.Sprintf("%s failed: %v", subject, e.Err)
	}
}

func (e *TransferError) Unwrap() error { return e.Err }
