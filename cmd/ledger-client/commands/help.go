// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/bureau-foundation/ledgerclient/cmd/ledger-client/cli"
)

// helpCommand lists every command with its options, or one command's
// full help. registry is resolved at run time because the help command
// is itself a member of the registry.
func helpCommand(out io.Writer, registry func() *cli.Registry) *cli.Command {
	return &cli.Command{
		Name:    "help",
		Summary: "Show commands and their options",
		Usage:   "help [command]",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			switch len(args) {
			case 0:
				registry().WriteHelp(out)
				return nil
			case 1:
				command, ok := registry().Resolve(args[0])
				if !ok {
					return &cli.UnknownCommandError{Name: args[0], Suggestion: registry().Suggest(args[0])}
				}
				command.PrintHelp(out)
				return nil
			default:
				return fmt.Errorf("expected at most 1 argument, got %d", len(args))
			}
		},
	}
}
