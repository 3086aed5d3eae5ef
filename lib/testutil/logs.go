// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
)

// LogBuffer collects JSON log lines written by a slog.JSONHandler.
type LogBuffer struct {
	mu     sync.Mutex
	buffer bytes.Buffer
}

// NewLogger returns a debug-level JSON logger writing into a fresh
// LogBuffer.
func NewLogger() (*slog.Logger, *LogBuffer) {
	logs := &LogBuffer{}
	handler := slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(handler), logs
}

// Write implements io.Writer.
func (b *LogBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.Write(p)
}

// String returns everything written so far.
func (b *LogBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer.String()
}

// Records parses every line as a JSON object. Lines that fail to parse
// are returned as {"msg": line}.
func (b *LogBuffer) Records() []map[string]any {
	var records []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(b.String()), "\n") {
		if line == "" {
			continue
		}
		record := map[string]any{}
		if err := json.Unmarshal([]byte(line), &record); err != nil {
			record = map[string]any{"msg": line}
		}
		records = append(records, record)
	}
	return records
}

// Find returns the first record whose msg equals message, or nil.
func (b *LogBuffer) Find(message string) map[string]any {
	for _, record := range b.Records() {
		if record["msg"] == message {
			return record
		}
	}
	return nil
}
