// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import "fmt"

// UnknownCommandError reports a first token that names no registered
// command.
type UnknownCommandError struct {
	Name string

	// Suggestion is the closest registered name, or "".
	Suggestion string
}

func (e *UnknownCommandError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown command %q (did you mean %q?)", e.Name, e.Suggestion)
	}
	return fmt.Sprintf("unknown command %q", e.Name)
}

// MissingArgumentError reports a required option that was not given,
// or an option given without its value.
type MissingArgumentError struct {
	Command string
	Option  string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing required argument %s", e.Command, e.Option)
}

// UnknownOptionError reports an option the command does not define.
type UnknownOptionError struct {
	Command string
	Option  string

	// Suggestion is the closest defined option, or "".
	Suggestion string
}

func (e *UnknownOptionError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: unknown option %s (did you mean %s?)", e.Command, e.Option, e.Suggestion)
	}
	return fmt.Sprintf("%s: unknown option %s", e.Command, e.Option)
}

// CommandExecutionError wraps any failure raised while running a
// command body, including recovered panics.
type CommandExecutionError struct {
	Command string
	Err     error
}

func (e *CommandExecutionError) Error() string {
	return fmt.Sprintf("%s: %v", e.Command, e.Err)
}

func (e *CommandExecutionError) Unwrap() error { return e.Err }
