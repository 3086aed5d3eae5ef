// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ledgerclient/lib/clock"
	"github.com/bureau-foundation/ledgerclient/lib/metrics"
)

// unknownCommandLabel is the metrics label for lines whose first token
// names no command. Keeps the label set bounded.
const unknownCommandLabel = "unknown"

// OutcomeStatus classifies the result of dispatching one line.
type OutcomeStatus int

const (
	// OutcomeEmpty is a blank line: nothing was looked up.
	OutcomeEmpty OutcomeStatus = iota

	// OutcomeOK is a command that ran to completion.
	OutcomeOK

	// OutcomeHelp is a command invoked with -h or --help. Its help was
	// written and its body did not run.
	OutcomeHelp

	// OutcomeFailed is any error: unknown command, bad options, or a
	// failing command body. Outcome.Err holds the cause.
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeEmpty:
		return "empty"
	case OutcomeOK:
		return "ok"
	case OutcomeHelp:
		return "help"
	case OutcomeFailed:
		return "failed"
	default:
		return fmt.Sprintf("OutcomeStatus(%d)", int(s))
	}
}

// Outcome is the result of one Dispatch call. Failures are values, not
// panics or process exits.
type Outcome struct {
	Status OutcomeStatus

	// Command is the first token of the line, or "" for an empty line.
	Command string

	// Err is one of *UnknownCommandError, *UnknownOptionError,
	// *MissingArgumentError or *CommandExecutionError when Status is
	// OutcomeFailed.
	Err error

	// Duration is the wall time from lookup to completion.
	Duration time.Duration
}

// Dispatcher turns input lines into command invocations.
type Dispatcher struct {
	registry *Registry
	out      io.Writer
	logger   *slog.Logger
	clock    clock.Clock
	recorder *metrics.Recorder
}

// NewDispatcher creates a dispatcher over registry. Help output goes to
// out. recorder may be nil.
func NewDispatcher(registry *Registry, out io.Writer, logger *slog.Logger, clk clock.Clock, recorder *metrics.Recorder) *Dispatcher {
	if clk == nil {
		clk = clock.Real()
	}
	return &Dispatcher{
		registry: registry,
		out:      out,
		logger:   logger,
		clock:    clk,
		recorder: recorder,
	}
}

// Dispatch splits line on whitespace, resolves the first token, parses
// the rest against the command's options and runs the command. Every
// error is logged and returned in the Outcome.
func (d *Dispatcher) Dispatch(ctx context.Context, line string) Outcome {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Outcome{Status: OutcomeEmpty}
	}

	name := fields[0]
	start := d.clock.Now()

	command, ok := d.registry.Resolve(name)
	if !ok {
		err := &UnknownCommandError{Name: name, Suggestion: d.registry.Suggest(name)}
		d.logger.Warn("unknown command", "command", name, "error", err)
		return d.finish(unknownCommandLabel, Outcome{Status: OutcomeFailed, Command: name, Err: err}, start)
	}

	logger := d.logger.With("command", name)
	args := fields[1:]

	if len(args) > 0 && isHelpFlag(args[0]) {
		command.PrintHelp(d.out)
		return d.finish(name, Outcome{Status: OutcomeHelp, Command: name}, start)
	}

	flagSet := command.flagSet()
	flagSet.SetOutput(io.Discard)
	// pflag's own usage printer is replaced by PrintHelp on ErrHelp.
	flagSet.Usage = func() {}

	if err := flagSet.Parse(normalizeArgs(args, flagSet)); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			command.PrintHelp(d.out)
			return d.finish(name, Outcome{Status: OutcomeHelp, Command: name}, start)
		}
		err = parseError(name, err, flagSet)
		logger.Warn("invalid arguments", "error", err)
		return d.finish(name, Outcome{Status: OutcomeFailed, Command: name, Err: err}, start)
	}
	if missing := missingRequired(flagSet); missing != "" {
		err := &MissingArgumentError{Command: name, Option: "--" + missing}
		logger.Warn("invalid arguments", "error", err)
		return d.finish(name, Outcome{Status: OutcomeFailed, Command: name, Err: err}, start)
	}

	if err := runCommand(ctx, command, flagSet.Args(), logger); err != nil {
		execErr := &CommandExecutionError{Command: name, Err: err}
		outcome := d.finish(name, Outcome{Status: OutcomeFailed, Command: name, Err: execErr}, start)
		logger.Error("command failed", "error", execErr.Err, "duration", outcome.Duration)
		return outcome
	}

	outcome := d.finish(name, Outcome{Status: OutcomeOK, Command: name}, start)
	logger.Debug("command completed", "duration", outcome.Duration)
	return outcome
}

// finish stamps the outcome's duration and records it under label.
func (d *Dispatcher) finish(label string, outcome Outcome, start time.Time) Outcome {
	outcome.Duration = d.clock.Now().Sub(start)
	result := metrics.OutcomeOK
	if outcome.Status == OutcomeFailed {
		result = metrics.OutcomeFailed
	}
	d.recorder.CommandDispatched(label, result, outcome.Duration)
	return outcome
}

// runCommand invokes the command body, converting a panic into an
// error so one bad command cannot end the session.
func runCommand(ctx context.Context, command *Command, args []string, logger *slog.Logger) (err error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			err = fmt.Errorf("panic: %v", recovered)
		}
	}()
	return command.Run(ctx, args, logger)
}

// parseError maps a pflag parse failure onto the dispatcher's error
// types. pflag reports these only as formatted messages, so the option
// is recovered from the text.
func parseError(command string, err error, flagSet *pflag.FlagSet) error {
	message := err.Error()

	if option, ok := strings.CutPrefix(message, "unknown flag: "); ok {
		return &UnknownOptionError{Command: command, Option: option, Suggestion: suggestFlag(option, flagSet)}
	}
	if rest, ok := strings.CutPrefix(message, "unknown shorthand flag: "); ok {
		option := shorthandOption(rest)
		return &UnknownOptionError{Command: command, Option: option, Suggestion: suggestFlag(option, flagSet)}
	}
	if rest, ok := strings.CutPrefix(message, "flag needs an argument: "); ok {
		option := rest
		if !strings.HasPrefix(rest, "-") {
			option = shorthandOption(rest)
		}
		return &MissingArgumentError{Command: command, Option: option}
	}

	return &CommandExecutionError{Command: command, Err: err}
}

// shorthandOption extracts "-x" from pflag's "'x' in -xyz" phrasing.
func shorthandOption(rest string) string {
	letter, _, _ := strings.Cut(rest, " in ")
	return "-" + strings.Trim(letter, `'"`)
}
