// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"text/tabwriter"

	"github.com/bureau-foundation/ledgerclient/lib/money"
)

// DefaultQuit is the quit token used when SessionConfig.Quit is empty.
const DefaultQuit = "quit"

// maxLineSize bounds a single input line.
const maxLineSize = 1 << 20

// State is the session's position in its read/dispatch cycle.
type State int32

const (
	StateReading State = iota
	StateDispatching
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateReading:
		return "reading"
	case StateDispatching:
		return "dispatching"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// SessionConfig holds the session's collaborators.
type SessionConfig struct {
	Input      io.Reader
	Output     io.Writer
	Dispatcher *Dispatcher
	Registry   *Registry

	// Quit is the first token that ends the session. Defaults to
	// DefaultQuit.
	Quit string

	// Prompt is written before each read. May be empty.
	Prompt string

	// Currencies are listed in the banner.
	Currencies []money.Info

	Logger *slog.Logger
}

// Session is the interactive read-dispatch loop. Only end of input
// and the quit token end it; command failures are reported and the
// loop continues.
type Session struct {
	config SessionConfig
	state  atomic.Int32
}

// NewSession creates a session in StateReading.
func NewSession(config SessionConfig) *Session {
	if config.Quit == "" {
		config.Quit = DefaultQuit
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	return &Session{config: config}
}

// State returns the current state. Safe to call from any goroutine.
func (s *Session) State() State {
	return State(s.state.Load())
}

// Run writes the banner and then reads lines until end of input or the
// quit token. Returns an error only if reading the input fails.
// Terminating does not affect event handling running elsewhere.
func (s *Session) Run(ctx context.Context) error {
	s.writeBanner()
	s.config.Logger.Debug("session started")

	scanner := bufio.NewScanner(s.config.Input)
	scanner.Buffer(make([]byte, 0, 4096), maxLineSize)
	styles := NewStyles(s.config.Output)

	for {
		s.setState(StateReading)
		fmt.Fprint(s.config.Output, s.config.Prompt)

		if !scanner.Scan() {
			s.setState(StateTerminated)
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("reading input: %w", err)
			}
			s.config.Logger.Debug("session ended", "reason", "end of input")
			return nil
		}

		line := scanner.Text()
		if fields := strings.Fields(line); len(fields) > 0 && fields[0] == s.config.Quit {
			s.setState(StateTerminated)
			s.config.Logger.Debug("session ended", "reason", "quit")
			return nil
		}

		s.setState(StateDispatching)
		outcome := s.config.Dispatcher.Dispatch(ctx, line)
		if outcome.Err != nil {
			fmt.Fprintln(s.config.Output, styles.Error.Render("error: "+outcome.Err.Error()))
		}
	}
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// writeBanner writes the command listing, the currency listing and a
// usage hint.
func (s *Session) writeBanner() {
	w := s.config.Output
	styles := NewStyles(w)

	s.config.Registry.WriteListing(w)

	if len(s.config.Currencies) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.Heading.Render("Currencies:"))
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		for _, info := range s.config.Currencies {
			fmt.Fprintf(tw, "  %s\t%d\n", info.Code, info.Scale)
		}
		tw.Flush()
	}

	fmt.Fprintf(w, "\n%s\n", styles.Faint.Render(fmt.Sprintf("Type a command, or %q to exit.", s.config.Quit)))
}
