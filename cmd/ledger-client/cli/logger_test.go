// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewLogger_Formats(t *testing.T) {
	tests := []struct {
		format string
		json   bool
	}{
		{LogFormatJSON, true},
		{LogFormatText, false},
		// A buffer is not a terminal, so auto picks JSON.
		{LogFormatAuto, true},
		{"", true},
	}

	for _, test := range tests {
		t.Run(test.format, func(t *testing.T) {
			var buffer bytes.Buffer
			logger, err := NewLogger(&buffer, slog.LevelInfo, test.format)
			if err != nil {
				t.Fatalf("NewLogger: %v", err)
			}
			logger.Info("connected", "account", "g.usd.alice")

			var record map[string]any
			isJSON := json.Unmarshal(buffer.Bytes(), &record) == nil
			if isJSON != test.json {
				t.Errorf("JSON output = %v, want %v: %s", isJSON, test.json, buffer.String())
			}
			if !strings.Contains(buffer.String(), "g.usd.alice") {
				t.Errorf("output missing attribute: %s", buffer.String())
			}
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buffer bytes.Buffer
	logger, err := NewLogger(&buffer, slog.LevelWarn, LogFormatJSON)
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	logger.Info("dropped")
	logger.Warn("kept")

	if strings.Contains(buffer.String(), "dropped") {
		t.Errorf("info record written at warn level: %s", buffer.String())
	}
	if !strings.Contains(buffer.String(), "kept") {
		t.Errorf("warn record missing: %s", buffer.String())
	}
}

func TestNewLogger_UnknownFormat(t *testing.T) {
	if _, err := NewLogger(&bytes.Buffer{}, slog.LevelInfo, "xml"); err == nil {
		t.Error("NewLogger accepted format xml")
	}
}
