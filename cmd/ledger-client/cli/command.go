// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
)

// Command is one operation available in the session.
type Command struct {
	// Name is the command name as typed by the user (e.g., "transfer").
	Name string

	// Summary is a one-line description shown in the help listing.
	Summary string

	// Description is a detailed multi-line description shown in the
	// command's own help output.
	Description string

	// Usage is the usage string (e.g., "transfer --to <path> --amount
	// <decimal>"). If empty, it is synthesized from the name.
	Usage string

	// Examples are shown in the help output after the description.
	Examples []Example

	// Flags returns a fresh *pflag.FlagSet for one invocation. If nil,
	// the command accepts no options.
	Flags func() *pflag.FlagSet

	// Run executes the command with the positional arguments left
	// after option parsing. logger is already scoped to the command.
	Run func(ctx context.Context, args []string, logger *slog.Logger) error
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// flagSet returns the command's flag set, or an empty one for
// commands without options so stray options are still reported.
func (c *Command) flagSet() *pflag.FlagSet {
	if c.Flags != nil {
		return c.Flags()
	}
	return pflag.NewFlagSet(c.Name, pflag.ContinueOnError)
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	styles := NewStyles(w)

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	fmt.Fprintln(w, styles.Heading.Render("Usage:"))
	if c.Usage != "" {
		fmt.Fprintf(w, "  %s\n", c.Usage)
	} else {
		fmt.Fprintf(w, "  %s [flags]\n", c.Name)
	}

	if options := c.optionHelp(); options != "" {
		fmt.Fprintf(w, "\n%s\n%s", styles.Heading.Render("Flags:"), options)
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\n%s\n", styles.Heading.Render("Examples:"))
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  %s\n", styles.Faint.Render("# "+example.Description))
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}
}

// optionHelp renders the option schema, marking required options.
func (c *Command) optionHelp() string {
	if c.Flags == nil {
		return ""
	}
	flagSet := c.Flags()
	flagSet.VisitAll(func(f *pflag.Flag) {
		if isRequired(f) && !strings.HasSuffix(f.Usage, "(required)") {
			f.Usage += " (required)"
		}
	})
	return flagSet.FlagUsages()
}

// isHelpFlag returns true for the help option variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "-help"
}
