// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/bureau-foundation/ledgerclient/lib/address"
)

// loopbackBuffer is the capacity of the loopback events channel.
const loopbackBuffer = 64

// Loopback is an in-process ledger. It accepts transfers and messages
// that are well-formed for its prefix and currency, keeps a record of
// submitted transfers, and echoes anything addressed to its own
// account back as an incoming event.
type Loopback struct {
	info    Info
	account address.Address

	events chan Event
	done   chan struct{}

	// inflight counts sends to events in progress so Close can wait
	// for them before closing the channel.
	inflight sync.WaitGroup

	mu        sync.Mutex
	connected bool
	closed    bool
	transfers []Transfer
}

var _ Adapter = (*Loopback)(nil)

// NewLoopback creates a loopback ledger for account, which must lie
// below info.Prefix.
func NewLoopback(info Info, account address.Address) (*Loopback, error) {
	if !info.Prefix.IsPrefix() {
		return nil, fmt.Errorf("loopback ledger prefix %q must end in '.'", info.Prefix)
	}
	if !account.Within(info.Prefix) {
		return nil, &InvalidAddressError{
			Input: account.String(),
			Err:   fmt.Errorf("account is not on ledger %s", info.Prefix),
		}
	}
	return &Loopback{
		info:    info,
		account: account,
		events:  make(chan Event, loopbackBuffer),
		done:    make(chan struct{}),
	}, nil
}

// Connect marks the ledger connected and emits a ConnectEvent.
func (l *Loopback) Connect(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.connected = true
	l.mu.Unlock()

	return l.emit(ctx, ConnectEvent{Account: l.account})
}

// Info returns the configured ledger description.
func (l *Loopback) Info(ctx context.Context) (Info, error) {
	return l.info, nil
}

// Account returns the local account.
func (l *Loopback) Account() address.Address {
	return l.account
}

// SendTransfer records the transfer. A transfer to the local account
// is echoed as an executed TransferEvent.
func (l *Loopback) SendTransfer(ctx context.Context, transfer Transfer) error {
	if err := l.checkTransfer(transfer); err != nil {
		return &TransferError{ID: transfer.ID, Message: err.Error()}
	}

	l.mu.Lock()
	if err := l.usableLocked(); err != nil {
		l.mu.Unlock()
		return &TransferError{ID: transfer.ID, Err: err}
	}
	l.transfers = append(l.transfers, transfer)
	l.mu.Unlock()

	if transfer.To != l.account {
		return nil
	}
	incoming := transfer
	incoming.State = "executed"
	return l.emit(ctx, TransferEvent{Transfer: incoming})
}

// SendMessage delivers a message. Only messages to the local account
// are echoed; others are accepted and dropped.
func (l *Loopback) SendMessage(ctx context.Context, message Message) error {
	if !message.To.Within(l.info.Prefix) {
		return &TransferError{Message: fmt.Sprintf("recipient %s is not on ledger %s", message.To, l.info.Prefix)}
	}

	l.mu.Lock()
	err := l.usableLocked()
	l.mu.Unlock()
	if err != nil {
		return &TransferError{Err: err}
	}

	if message.To != l.account {
		return nil
	}
	if message.From.IsZero() {
		message.From = l.account
	}
	return l.emit(ctx, MessageEvent{Message: message})
}

// Events returns the incoming events channel.
func (l *Loopback) Events() <-chan Event {
	return l.events
}

// Transfers returns a copy of every transfer accepted so far.
func (l *Loopback) Transfers() []Transfer {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.transfers)
}

// Close stops the ledger and closes the events channel once pending
// sends have finished. Close is idempotent.
func (l *Loopback) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	close(l.done)
	l.mu.Unlock()

	l.inflight.Wait()
	close(l.events)
	return nil
}

func (l *Loopback) checkTransfer(transfer Transfer) error {
	if transfer.Ledger != l.info.Prefix {
		return fmt.Errorf("transfer is for ledger %s, not %s", transfer.Ledger, l.info.Prefix)
	}
	if !transfer.From.Within(l.info.Prefix) {
		return fmt.Errorf("source %s is not on ledger %s", transfer.From, l.info.Prefix)
	}
	if !transfer.To.Within(l.info.Prefix) {
		return fmt.Errorf("destination %s is not on ledger %s", transfer.To, l.info.Prefix)
	}
	if transfer.Amount.Currency != l.info.Currency {
		return fmt.Errorf("currency %s does not match ledger currency %s", transfer.Amount.Currency, l.info.Currency)
	}
	if !transfer.Amount.Value.IsPositive() {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

func (l *Loopback) usableLocked() error {
	if l.closed {
		return ErrClosed
	}
	if !l.connected {
		return fmt.Errorf("loopback ledger is not connected")
	}
	return nil
}

// emit delivers event without holding l.mu.
func (l *Loopback) emit(ctx context.Context, event Event) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.inflight.Add(1)
	l.mu.Unlock()
	defer l.inflight.Done()

	select {
	case l.events <- event:
		return nil
	case <-l.done:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
