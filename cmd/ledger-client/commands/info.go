// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/bureau-foundation/ledgerclient/cmd/ledger-client/cli"
	"github.com/bureau-foundation/ledgerclient/lib/version"
)

func infoCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "info",
		Summary:     "Show the ledger prefix, currency and local account",
		Description: "Show the connected ledger's address prefix, currency and scale, and the local account.",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if err := noArguments(args); err != nil {
				return err
			}
			writer := tabwriter.NewWriter(deps.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(writer, "ledger\t%s\n", deps.Info.Prefix)
			fmt.Fprintf(writer, "currency\t%s\n", deps.Info.Currency)
			fmt.Fprintf(writer, "scale\t%d\n", deps.Info.CurrencyScale())
			fmt.Fprintf(writer, "account\t%s\n", deps.Adapter.Account())
			return writer.Flush()
		},
	}
}

func currenciesCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:        "currencies",
		Summary:     "List known currencies and their minor-unit digits",
		Description: "List the configured currencies with the number of digits after the decimal point each allows.",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if err := noArguments(args); err != nil {
				return err
			}
			writer := tabwriter.NewWriter(deps.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(writer, "CODE\tDIGITS")
			for _, currency := range deps.Currencies {
				fmt.Fprintf(writer, "%s\t%d\n", currency.Code, currency.Scale)
			}
			return writer.Flush()
		},
	}
}

func versionCommand(deps Deps) *cli.Command {
	return &cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Run: func(_ context.Context, args []string, _ *slog.Logger) error {
			if err := noArguments(args); err != nil {
				return err
			}
			fmt.Fprintln(deps.Out, version.Full())
			return nil
		},
	}
}
