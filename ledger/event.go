// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import "github.com/bureau-foundation/ledgerclient/lib/address"

// EventKind names an event variant in logs and metric labels.
type EventKind string

const (
	KindConnect  EventKind = "connect"
	KindTransfer EventKind = "transfer"
	KindMessage  EventKind = "message"
	KindError    EventKind = "error"
)

// Event is something the ledger reported. The set of implementations
// is closed: ConnectEvent, TransferEvent, MessageEvent and ErrorEvent.
type Event interface {
	Kind() EventKind
	isEvent()
}

// ConnectEvent reports an established ledger session.
type ConnectEvent struct {
	Account address.Address
}

// TransferEvent reports a transfer involving the local account.
type TransferEvent struct {
	Transfer Transfer
}

// MessageEvent reports a message delivered to the local account.
type MessageEvent struct {
	Message Message
}

// ErrorEvent reports an adapter-level failure, such as a dropped
// notification connection.
type ErrorEvent struct {
	Err error
}

func (ConnectEvent) Kind() EventKind  { return KindConnect }
func (TransferEvent) Kind() EventKind { return KindTransfer }
func (MessageEvent) Kind() EventKind  { return KindMessage }
func (ErrorEvent) Kind() EventKind    { return KindError }

func (ConnectEvent) isEvent()  {}
func (TransferEvent) isEvent() {}
func (MessageEvent) isEvent()  {}
func (ErrorEvent) isEvent()    {}
