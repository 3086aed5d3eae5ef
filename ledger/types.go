// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/text/currency"

	"github.com/bureau-foundation/ledgerclient/lib/address"
	"github.com/bureau-foundation/ledgerclient/lib/money"
)

// Info describes a connected ledger.
type Info struct {
	// Prefix is the ledger's address prefix (e.g., "g.usd."). Every
	// account on the ledger lives strictly below it.
	Prefix address.Address

	// Currency is the single currency the ledger settles in.
	Currency currency.Unit

	// Scale is the number of fractional digits the ledger accepts, as
	// the ledger states it. Nil means the currency's ISO 4217
	// minor-unit digits; a stated zero means whole units only.
	Scale *int
}

// CurrencyScale returns the number of fractional digits an amount on
// this ledger may carry.
func (i Info) CurrencyScale() int {
	if i.Scale != nil {
		return *i.Scale
	}
	return money.StandardScale(i.Currency)
}

// Transfer is a value movement from one account to another on a
// single ledger.
type Transfer struct {
	ID     uuid.UUID
	Ledger address.Address
	From   address.Address
	To     address.Address
	Amount money.Amount

	// Authorized marks the debit as approved by the source account.
	Authorized bool

	// Memo is optional opaque data carried with the transfer.
	Memo []byte

	// State is the ledger-reported state of an incoming transfer
	// ("prepared", "executed", ...). Empty for transfers built locally.
	State string
}

// String renders the transfer on one line for logs and command output.
func (t Transfer) String() string {
	s := fmt.Sprintf("transfer %s: %s -> %s %s", t.ID, t.From, t.To, t.Amount)
	if t.Authorized {
		s += " authorized"
	}
	if t.State != "" {
		s += " (" + t.State + ")"
	}
	return s
}

// LogValue renders the transfer as a log group without the memo.
func (t Transfer) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("id", t.ID.String()),
		slog.String("from", t.From.String()),
		slog.String("to", t.To.String()),
		slog.String("amount", t.Amount.String()),
		slog.Bool("authorized", t.Authorized),
	}
	if t.State != "" {
		attrs = append(attrs, slog.String("state", t.State))
	}
	return slog.GroupValue(attrs...)
}

// Message is a ledger-relayed message between two accounts. Data is
// normally an encoded envelope but the ledger does not enforce that.
type Message struct {
	From address.Address
	To   address.Address
	Data []byte
}

// Adapter connects the client to one ledger as one account.
//
// Connect must be called before any other method except Account and
// Events. Events returns the same channel for the adapter's lifetime;
// it is closed by Close. Implementations must not send on the channel
// while holding their own locks.
type Adapter interface {
	// Connect establishes the ledger session and emits a ConnectEvent.
	Connect(ctx context.Context) error

	// Info returns the ledger's prefix, currency and scale.
	Info(ctx context.Context) (Info, error)

	// Account returns the local account's address.
	Account() address.Address

	// SendTransfer submits a transfer. Rejections are *TransferError.
	SendTransfer(ctx context.Context, transfer Transfer) error

	// SendMessage relays a message to another account on the ledger.
	SendMessage(ctx context.Context, message Message) error

	// Events returns the channel of incoming ledger events.
	Events() <-chan Event

	// Close disconnects and closes the events channel.
	Close() error
}
