// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"log/slog"

	"golang.org/x/term"
)

// Log output formats accepted by NewLogger.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// NewLogger creates the session's structured logger writing to w.
// With format "auto" (or ""), uses slog.TextHandler when w is a
// terminal for human-readable output and slog.JSONHandler otherwise, so
// piped logs stay machine-parseable. "text" and "json" force one
// handler.
//
// Callers scope the logger with With():
//
//	logger := cli.NewLogger(os.Stderr, slog.LevelInfo, "auto").With(
//	    "account", account.String(),
//	)
func NewLogger(w io.Writer, level slog.Level, format string) (*slog.Logger, error) {
	options := &slog.HandlerOptions{Level: level}
	switch format {
	case LogFormatText:
		return slog.New(slog.NewTextHandler(w, options)), nil
	case LogFormatJSON:
		return slog.New(slog.NewJSONHandler(w, options)), nil
	case LogFormatAuto, "":
		if isTerminal(w) {
			return slog.New(slog.NewTextHandler(w, options)), nil
		}
		return slog.New(slog.NewJSONHandler(w, options)), nil
	default:
		return nil, fmt.Errorf("unknown log format %q (expected auto, text or json)", format)
	}
}

// isTerminal reports whether w is a file descriptor attached to a
// terminal.
func isTerminal(w io.Writer) bool {
	file, ok := w.(interface{ Fd() uintptr })
	return ok && term.IsTerminal(int(file.Fd()))
}
