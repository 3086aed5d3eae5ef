// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/ledgerclient/cmd/ledger-client/cli"
	"github.com/bureau-foundation/ledgerclient/ledger"
	"github.com/bureau-foundation/ledgerclient/lib/metrics"
)

type transferParams struct {
	To     string `flag:"to"     desc:"destination account path below the ledger prefix (e.g. alice)" required:"true"`
	Amount string `flag:"amount" desc:"decimal amount in the ledger currency (e.g. 10.50)" required:"true"`
	Memo   string `flag:"memo"   desc:"memo carried with the transfer"`
}

func transferCommand(deps Deps) *cli.Command {
	var params transferParams

	return &cli.Command{
		Name:    "transfer",
		Summary: "Send a transfer to another account",
		Description: `Send an authorized transfer from the local account to an account on
the same ledger. The destination is a path relative to the ledger
prefix, and the amount is an exact decimal in the ledger's currency
with no more fractional digits than the currency allows.`,
		Usage: "transfer --to <path> --amount <decimal> [--memo <text>]",
		Examples: []cli.Example{
			{
				Description: "Send 10.50 to alice",
				Command:     "transfer -to alice -amount 10.50",
			},
			{
				Description: "Attach a memo",
				Command:     "transfer --to bob --amount 3 --memo rent",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("transfer", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArguments(args); err != nil {
				return err
			}

			var options []ledger.TransferOption
			if params.Memo != "" {
				options = append(options, ledger.WithMemo([]byte(params.Memo)))
			}
			transfer, err := ledger.BuildTransfer(deps.Info, deps.Adapter.Account(), params.To, params.Amount, options...)
			if err != nil {
				return err
			}

			logger.Info("sending transfer", "transfer", transfer)
			if err := deps.Adapter.SendTransfer(ctx, transfer); err != nil {
				deps.Recorder.TransferSubmitted(metrics.OutcomeFailed)
				return err
			}
			deps.Recorder.TransferSubmitted(metrics.OutcomeOK)

			fmt.Fprintf(deps.Out, "sent %s\n", transfer)
			return nil
		},
	}
}
