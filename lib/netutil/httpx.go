// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil provides HTTP and connection helpers shared by the
// ledger adapters.
//
// Response helpers bound every body read at MaxResponseSize so a
// misbehaving ledger cannot exhaust memory. ErrorMessage extracts the
// human-readable reason from a ledger error body. IsExpectedCloseError
// separates a deliberate disconnect from a failure on the notification
// websocket.
package netutil

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// MaxResponseSize bounds ledger API response body reads: 8 MB. Ledger
// metadata, transfer and error bodies are a few kilobytes at most.
const MaxResponseSize int64 = 8 << 20

// maxErrorMessage caps the length of a raw error body quoted in an
// error message.
const maxErrorMessage = 512

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// DecodeResponse reads a JSON response body (up to MaxResponseSize
// bytes) and decodes it into v.
func DecodeResponse(body io.Reader, v any) error {
	data, err := ReadResponse(body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	return json.Unmarshal(data, v)
}

// ErrorMessage reads an error response body and returns the reason it
// carries. Ledgers answer with {"id": "...", "message": "..."}; any
// other body is returned trimmed and truncated. Read errors yield
// whatever was read.
func ErrorMessage(body io.Reader) string {
	data, _ := ReadResponse(body)

	var structured struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &structured) == nil && structured.Message != "" {
		if structured.ID != "" {
			return structured.ID + ": " + structured.Message
		}
		return structured.Message
	}

	text := strings.TrimSpace(string(data))
	if len(text) > maxErrorMessage {
		text = text[:maxErrorMessage] + "..."
	}
	return text
}
