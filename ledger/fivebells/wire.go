// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fivebells

import (
	"bytes"
	"encoding/json"
	"unicode/utf8"
)

// metadata is the ledger's self-description served at its base URL.
type metadata struct {
	Prefix        string `json:"ilp_prefix"`
	CurrencyCode  string `json:"currency_code"`
	CurrencyScale *int   `json:"currency_scale,omitempty"`
	URLs          struct {
		Transfer  string `json:"transfer"`
		Account   string `json:"account"`
		Message   string `json:"message"`
		Websocket string `json:"websocket"`
	} `json:"urls"`
}

// rpcMessage is any JSON-RPC 2.0 frame on the notification socket.
type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type subscribeParams struct {
	EventType string   `json:"eventType"`
	Accounts  []string `json:"accounts"`
}

// notification is the params object of a "notify" frame.
type notification struct {
	Event    string          `json:"event"`
	Resource json.RawMessage `json:"resource"`
}

// Notification event names.
const (
	eventTransferCreate = "transfer.create"
	eventTransferUpdate = "transfer.update"
	eventMessageSend    = "message.send"
)

type transferResource struct {
	ID      string        `json:"id"`
	Ledger  string        `json:"ledger"`
	Debits  []transferLeg `json:"debits"`
	Credits []transferLeg `json:"credits"`
	State   string        `json:"state,omitempty"`
}

type transferLeg struct {
	Account    string          `json:"account"`
	Amount     string          `json:"amount"`
	Authorized bool            `json:"authorized,omitempty"`
	Memo       json.RawMessage `json:"memo,omitempty"`
}

type messageResource struct {
	Ledger string          `json:"ledger"`
	From   string          `json:"from"`
	To     string          `json:"to"`
	Data   json.RawMessage `json:"data"`
}

// binaryPayload wraps bytes that are not UTF-8 text, such as CBOR
// envelopes, since the ledger only relays JSON.
type binaryPayload struct {
	Binary []byte `json:"binary"`
}

// jsonPayload embeds opaque bytes in a JSON document: valid JSON is
// sent as-is, other UTF-8 text as a JSON string and anything else as
// a base64 binaryPayload.
func jsonPayload(data []byte) json.RawMessage {
	if len(data) == 0 {
		return nil
	}
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	var encoded []byte
	if utf8.Valid(data) {
		encoded, _ = json.Marshal(string(data))
	} else {
		encoded, _ = json.Marshal(binaryPayload{Binary: data})
	}
	return encoded
}

// payloadBytes reverses jsonPayload: a JSON string yields its
// contents, a binaryPayload its bytes, and any other JSON value its
// raw encoding.
func payloadBytes(raw json.RawMessage) []byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if trimmed[0] == '{' {
		var fields map[string]json.RawMessage
		if json.Unmarshal(trimmed, &fields) == nil && len(fields) == 1 && fields["binary"] != nil {
			var wrapped binaryPayload
			if json.Unmarshal(trimmed, &wrapped) == nil {
				return wrapped.Binary
			}
		}
	}
	if trimmed[0] == '"' {
		var text string
		if json.Unmarshal(trimmed, &text) == nil {
			return []byte(text)
		}
	}
	return []byte(trimmed)
}
