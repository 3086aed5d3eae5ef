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
	"github.com/bureau-foundation/ledgerclient/lib/envelope"
)

type messageParams struct {
	To     string `flag:"to"     desc:"recipient account path below the ledger prefix" required:"true"`
	ID     string `flag:"id"     desc:"message identifier" required:"true"`
	Data   string `flag:"data"   desc:"message payload, a JSON value or plain text" required:"true"`
	Method string `flag:"method" desc:"application method name"`
}

func messageCommand(deps Deps) *cli.Command {
	var params messageParams

	return &cli.Command{
		Name:    "message",
		Summary: "Send a message envelope to another account",
		Description: `Encode an envelope {id, method, data} in the configured message format
and deliver it to an account on the ledger through the ledger's
messaging channel. Data that parses as JSON is sent as that value;
anything else is sent as a string.`,
		Usage: "message --to <path> --id <id> --data <text> [--method <name>]",
		Examples: []cli.Example{
			{
				Description: "Send a quote request to bob",
				Command:     "message --to bob --id m1 --method quote --data 10.00",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("message", &params)
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if err := noArguments(args); err != nil {
				return err
			}

			recipient, err := deps.Info.Prefix.Join(params.To)
			if err != nil {
				return &ledger.InvalidAddressError{Input: params.To, Err: err}
			}

			payloadData, err := envelope.DataFromText(deps.Codec.Format(), params.Data)
			if err != nil {
				return fmt.Errorf("encoding message data: %w", err)
			}
			payload := envelope.Envelope{ID: params.ID, Method: params.Method, Data: payloadData}
			data, err := deps.Codec.Encode(payload)
			if err != nil {
				return fmt.Errorf("encoding message: %w", err)
			}

			logger.Info("sending message", "to", recipient, "envelope", payload, "format", deps.Codec.Format())
			message := ledger.Message{From: deps.Adapter.Account(), To: recipient, Data: data}
			if err := deps.Adapter.SendMessage(ctx, message); err != nil {
				return err
			}

			fmt.Fprintf(deps.Out, "sent message %s to %s (%d bytes)\n", params.ID, recipient, len(data))
			return nil
		},
	}
}
