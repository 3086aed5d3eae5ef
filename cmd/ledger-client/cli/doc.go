// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli is the interactive command framework for ledger-client.
//
// A [Command] is a named operation with a [pflag.FlagSet] factory and
// a Run function. Commands are registered once at startup into an
// immutable [Registry]. The [Dispatcher] turns one input line into one
// command invocation: it splits the line, resolves the command, parses
// its options and runs it, converting every failure (including panics)
// into a non-fatal [Outcome]. The [Session] is the read-dispatch loop
// on top, ending on end of input or the quit token.
//
// Options may be written --name value, --name=value or, for names
// longer than one character, -name value. Option schemas are declared
// as tagged structs and bound with [FlagsFromParams]; a required:"true"
// tag makes the dispatcher reject invocations that omit the option.
//
// When a user types an unknown command or option, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
package cli
