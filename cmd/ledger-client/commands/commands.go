// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/bureau-foundation/ledgerclient/cmd/ledger-client/cli"
	"github.com/bureau-foundation/ledgerclient/ledger"
	"github.com/bureau-foundation/ledgerclient/lib/envelope"
	"github.com/bureau-foundation/ledgerclient/lib/metrics"
	"github.com/bureau-foundation/ledgerclient/lib/money"
)

// Deps are the collaborators shared by every command.
type Deps struct {
	// Adapter is the connected ledger.
	Adapter ledger.Adapter

	// Info describes the ledger, as reported by Adapter.Info after
	// Connect.
	Info ledger.Info

	// Codec encodes outgoing message envelopes. Defaults to JSON.
	Codec envelope.Codec

	// Currencies is the listing shown by the currencies command.
	Currencies []money.Info

	// Recorder counts transfer submissions. May be nil.
	Recorder *metrics.Recorder

	// Out receives command output.
	Out io.Writer
}

// NewRegistry builds the command registry in listing order.
func NewRegistry(deps Deps) (*cli.Registry, error) {
	if deps.Adapter == nil {
		return nil, errors.New("commands: adapter is required")
	}
	if deps.Out == nil {
		return nil, errors.New("commands: output writer is required")
	}
	if deps.Codec == nil {
		codec, err := envelope.For(envelope.JSON)
		if err != nil {
			return nil, err
		}
		deps.Codec = codec
	}

	var registry *cli.Registry
	registry, err := cli.NewRegistry(
		transferCommand(deps),
		messageCommand(deps),
		infoCommand(deps),
		currenciesCommand(deps),
		versionCommand(deps),
		helpCommand(deps.Out, func() *cli.Registry { return registry }),
	)
	if err != nil {
		return nil, err
	}
	return registry, nil
}

// noArguments rejects positional arguments for commands that take
// only options.
func noArguments(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("unexpected argument %q", args[0])
	}
	return nil
}
