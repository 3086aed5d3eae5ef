// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/currency"

	"github.com/bureau-foundation/ledgerclient/cmd/ledger-client/cli"
	"github.com/bureau-foundation/ledgerclient/ledger"
	"github.com/bureau-foundation/ledgerclient/lib/address"
	"github.com/bureau-foundation/ledgerclient/lib/clock"
	"github.com/bureau-foundation/ledgerclient/lib/envelope"
	"github.com/bureau-foundation/ledgerclient/lib/metrics"
	"github.com/bureau-foundation/ledgerclient/lib/money"
	"github.com/bureau-foundation/ledgerclient/lib/testutil"
)

var localAccount = address.MustParse("g.usd.bob")

type fixture struct {
	loopback   *ledger.Loopback
	dispatcher *cli.Dispatcher
	registry   *cli.Registry
	out        *bytes.Buffer
	logs       *testutil.LogBuffer
	recorder   *metrics.Recorder
}

func newFixture(t *testing.T, format envelope.Format) *fixture {
	t.Helper()

	info := ledger.Info{Prefix: address.MustParse("g.usd."), Currency: currency.USD}
	loopback, err := ledger.NewLoopback(info, localAccount)
	if err != nil {
		t.Fatalf("NewLoopback: %v", err)
	}
	t.Cleanup(func() { loopback.Close() })
	if err := loopback.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	testutil.RequireReceive(t, loopback.Events(), time.Second, "connect event")

	codec, err := envelope.For(format)
	if err != nil {
		t.Fatalf("envelope.For: %v", err)
	}

	out := &bytes.Buffer{}
	recorder := metrics.New()
	registry, err := NewRegistry(Deps{
		Adapter:    loopback,
		Info:       info,
		Codec:      codec,
		Currencies: []money.Info{{Code: "USD", Scale: 2}, {Code: "JPY", Scale: 0}},
		Recorder:   recorder,
		Out:        out,
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	logger, logs := testutil.NewLogger()
	return &fixture{
		loopback:   loopback,
		dispatcher: cli.NewDispatcher(registry, out, logger, clock.Fake(time.Unix(0, 0)), recorder),
		registry:   registry,
		out:        out,
		logs:       logs,
		recorder:   recorder,
	}
}

func (f *fixture) dispatch(t *testing.T, line string) cli.Outcome {
	t.Helper()
	return f.dispatcher.Dispatch(context.Background(), line)
}

func TestRegistryOrder(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	var names []string
	for _, entry := range f.registry.Describe() {
		names = append(names, entry.Name)
		if entry.Summary == "" {
			t.Errorf("command %q has no summary", entry.Name)
		}
	}
	if got := strings.Join(names, " "); got != "transfer message info currencies version help" {
		t.Errorf("commands = %s", got)
	}
}

func TestNewRegistry_RequiresDeps(t *testing.T) {
	if _, err := NewRegistry(Deps{Out: &bytes.Buffer{}}); err == nil {
		t.Error("NewRegistry accepted a nil adapter")
	}
	loopback, err := ledger.NewLoopback(ledger.Info{Prefix: address.MustParse("g.usd."), Currency: currency.USD}, localAccount)
	if err != nil {
		t.Fatalf("NewLoopback: %v", err)
	}
	if _, err := NewRegistry(Deps{Adapter: loopback}); err == nil {
		t.Error("NewRegistry accepted a nil writer")
	}
}

func TestTransfer(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	outcome := f.dispatch(t, "transfer -to alice -amount 10.50")
	if outcome.Status != cli.OutcomeOK {
		t.Fatalf("Status = %v (err %v), want ok", outcome.Status, outcome.Err)
	}

	transfers := f.loopback.Transfers()
	if len(transfers) != 1 {
		t.Fatalf("ledger recorded %d transfers, want 1", len(transfers))
	}
	transfer := transfers[0]
	if transfer.To.String() != "g.usd.alice" || transfer.From != localAccount {
		t.Errorf("transfer = %s, want g.usd.bob -> g.usd.alice", transfer)
	}
	if transfer.Amount.String() != "10.50 USD" {
		t.Errorf("amount = %s, want 10.50 USD", transfer.Amount)
	}
	if !transfer.Authorized {
		t.Error("transfer is not authorized")
	}
	if transfer.Memo != nil {
		t.Errorf("memo = %q, want none", transfer.Memo)
	}

	if !strings.Contains(f.out.String(), "sent transfer "+transfer.ID.String()) {
		t.Errorf("output = %q", f.out.String())
	}
	if record := f.logs.Find("sending transfer"); record == nil || record["command"] != "transfer" {
		t.Errorf("sending transfer record = %v", record)
	}
	if submitted := f.transfersSubmitted(t, metrics.OutcomeOK); submitted != 1 {
		t.Errorf("transfers_submitted_total{ok} = %v, want 1", submitted)
	}
}

func TestTransfer_Memo(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	if outcome := f.dispatch(t, "transfer --to alice --amount 3 --memo rent"); outcome.Err != nil {
		t.Fatalf("Dispatch: %v", outcome.Err)
	}
	if transfers := f.loopback.Transfers(); len(transfers) != 1 || string(transfers[0].Memo) != "rent" {
		t.Errorf("transfers = %v, want one with memo rent", transfers)
	}
}

func TestTransfer_ToSelfEchoes(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	if outcome := f.dispatch(t, "transfer --to bob --amount 1"); outcome.Err != nil {
		t.Fatalf("Dispatch: %v", outcome.Err)
	}
	event := testutil.RequireReceive(t, f.loopback.Events(), time.Second, "echoed transfer")
	incoming, ok := event.(ledger.TransferEvent)
	if !ok {
		t.Fatalf("event = %T, want TransferEvent", event)
	}
	if incoming.Transfer.State != "executed" {
		t.Errorf("state = %q, want executed", incoming.Transfer.State)
	}
}

func TestTransfer_Failures(t *testing.T) {
	tests := []struct {
		line  string
		check func(error) bool
		name  string
	}{
		{
			line:  "transfer -to alice -amount 10.555",
			check: func(err error) bool { var target *ledger.InvalidAmountError; return errors.As(err, &target) },
			name:  "InvalidAmountError",
		},
		{
			line:  "transfer -to alice -amount -5",
			check: func(err error) bool { var target *ledger.InvalidAmountError; return errors.As(err, &target) },
			name:  "InvalidAmountError",
		},
		{
			line:  "transfer -to ..alice -amount 1",
			check: func(err error) bool { var target *ledger.InvalidAddressError; return errors.As(err, &target) },
			name:  "InvalidAddressError",
		},
		{
			line:  "transfer -to alice/../mallory -amount 1",
			check: func(err error) bool { var target *ledger.InvalidAddressError; return errors.As(err, &target) },
			name:  "InvalidAddressError",
		},
		{
			line:  "transfer -to alice -amount 1 stray",
			check: func(err error) bool { var target *cli.CommandExecutionError; return errors.As(err, &target) },
			name:  "CommandExecutionError",
		},
	}

	for _, test := range tests {
		t.Run(test.line, func(t *testing.T) {
			f := newFixture(t, envelope.JSON)
			outcome := f.dispatch(t, test.line)
			if outcome.Status != cli.OutcomeFailed {
				t.Fatalf("Status = %v, want failed", outcome.Status)
			}
			var execution *cli.CommandExecutionError
			if !errors.As(outcome.Err, &execution) || execution.Command != "transfer" {
				t.Errorf("Err = %v, want *CommandExecutionError for transfer", outcome.Err)
			}
			if !test.check(outcome.Err) {
				t.Errorf("Err = %v, want it to wrap %s", outcome.Err, test.name)
			}
			if len(f.loopback.Transfers()) != 0 {
				t.Error("a rejected transfer reached the ledger")
			}
		})
	}
}

func TestTransfer_AdapterRejection(t *testing.T) {
	f := newFixture(t, envelope.JSON)
	f.loopback.Close()

	outcome := f.dispatch(t, "transfer --to alice --amount 1")
	var transferErr *ledger.TransferError
	if !errors.As(outcome.Err, &transferErr) {
		t.Fatalf("Err = %v, want *TransferError", outcome.Err)
	}
	if !errors.Is(outcome.Err, ledger.ErrClosed) {
		t.Errorf("Err = %v, want it to wrap ErrClosed", outcome.Err)
	}
	if got := f.transfersSubmitted(t, metrics.OutcomeFailed); got != 1 {
		t.Errorf("transfers_submitted_total{failed} = %v, want 1", got)
	}
}

func TestMessage(t *testing.T) {
	tests := []struct {
		format   envelope.Format
		data     string
		wantText string
	}{
		{envelope.JSON, "hello", "hello"},
		{envelope.JSON, `{"amount":"10.00"}`, `{"amount":"10.00"}`},
		{envelope.CBOR, "hello", "hello"},
		{envelope.CBOR, `{"amount":"10.00"}`, `{"amount": "10.00"}`},
	}

	for _, test := range tests {
		t.Run(string(test.format)+"/"+test.data, func(t *testing.T) {
			f := newFixture(t, test.format)

			outcome := f.dispatch(t, "message --to bob --id m1 --method quote --data "+test.data)
			if outcome.Status != cli.OutcomeOK {
				t.Fatalf("Status = %v (err %v), want ok", outcome.Status, outcome.Err)
			}

			event := testutil.RequireReceive(t, f.loopback.Events(), time.Second, "echoed message")
			incoming, ok := event.(ledger.MessageEvent)
			if !ok {
				t.Fatalf("event = %T, want MessageEvent", event)
			}
			if incoming.Message.From != localAccount || incoming.Message.To != localAccount {
				t.Errorf("message from %s to %s, want bob to bob", incoming.Message.From, incoming.Message.To)
			}

			codec, err := envelope.For(test.format)
			if err != nil {
				t.Fatalf("envelope.For: %v", err)
			}
			decoded, err := codec.Decode(incoming.Message.Data)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if decoded.ID != "m1" || decoded.Method != "quote" {
				t.Errorf("envelope = %+v, want id m1 and method quote", decoded)
			}
			if text := envelope.DataText(test.format, decoded.Data); text != test.wantText {
				t.Errorf("data = %q, want %q", text, test.wantText)
			}
			if !strings.Contains(f.out.String(), "sent message m1 to g.usd.bob") {
				t.Errorf("output = %q", f.out.String())
			}
		})
	}
}

func TestMessage_Failures(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	outcome := f.dispatch(t, "message --to ../root --id m1 --data x")
	var invalid *ledger.InvalidAddressError
	if !errors.As(outcome.Err, &invalid) {
		t.Errorf("Err = %v, want *InvalidAddressError", outcome.Err)
	}

	outcome = f.dispatch(t, "message --to bob --data x")
	var missing *cli.MissingArgumentError
	if !errors.As(outcome.Err, &missing) || missing.Option != "--id" {
		t.Errorf("Err = %v, want *MissingArgumentError for --id", outcome.Err)
	}

	// An empty id cannot be encoded.
	outcome = f.dispatch(t, "message --to bob --id= --data x")
	var execution *cli.CommandExecutionError
	if !errors.As(outcome.Err, &execution) {
		t.Errorf("Err = %v, want *CommandExecutionError", outcome.Err)
	}
}

func TestInfo(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	if outcome := f.dispatch(t, "info"); outcome.Err != nil {
		t.Fatalf("Dispatch: %v", outcome.Err)
	}
	output := f.out.String()
	for _, want := range []string{"ledger    g.usd.", "currency  USD", "scale     2", "account   g.usd.bob"} {
		if !strings.Contains(output, want) {
			t.Errorf("info output missing %q:\n%s", want, output)
		}
	}
}

func TestCurrencies(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	if outcome := f.dispatch(t, "currencies"); outcome.Err != nil {
		t.Fatalf("Dispatch: %v", outcome.Err)
	}
	output := f.out.String()
	for _, want := range []string{"CODE  DIGITS", "USD   2", "JPY   0"} {
		if !strings.Contains(output, want) {
			t.Errorf("currencies output missing %q:\n%s", want, output)
		}
	}
}

func TestVersion(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	if outcome := f.dispatch(t, "version"); outcome.Err != nil {
		t.Fatalf("Dispatch: %v", outcome.Err)
	}
	if !strings.HasPrefix(f.out.String(), "ledger-client ") {
		t.Errorf("version output = %q", f.out.String())
	}

	outcome := f.dispatch(t, "version extra")
	if outcome.Err == nil || !strings.Contains(outcome.Err.Error(), `unexpected argument "extra"`) {
		t.Errorf("Err = %v, want unexpected argument", outcome.Err)
	}
}

func TestHelp(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	if outcome := f.dispatch(t, "help"); outcome.Err != nil {
		t.Fatalf("Dispatch: %v", outcome.Err)
	}
	output := f.out.String()
	for _, want := range []string{
		"transfer --to <path> --amount <decimal> [--memo <text>]",
		"--amount string",
		"(required)",
		"message --to <path> --id <id> --data <text> [--method <name>]",
		"currencies",
		"help [command]",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("help output missing %q:\n%s", want, output)
		}
	}
}

func TestHelp_Command(t *testing.T) {
	f := newFixture(t, envelope.JSON)

	if outcome := f.dispatch(t, "help transfer"); outcome.Err != nil {
		t.Fatalf("Dispatch: %v", outcome.Err)
	}
	if !strings.Contains(f.out.String(), "Send 10.50 to alice") {
		t.Errorf("help transfer output:\n%s", f.out.String())
	}

	outcome := f.dispatch(t, "help trnsfer")
	var unknown *cli.UnknownCommandError
	if !errors.As(outcome.Err, &unknown) || unknown.Suggestion != "transfer" {
		t.Errorf("Err = %v, want *UnknownCommandError suggesting transfer", outcome.Err)
	}
}

// transfersSubmitted reads ledger_client_transfers_submitted_total
// for outcome.
func (f *fixture) transfersSubmitted(t *testing.T, outcome string) float64 {
	t.Helper()
	families, err := f.recorder.Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, family := range families {
		if family.GetName() != "ledger_client_transfers_submitted_total" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "outcome" && label.GetValue() == outcome {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}
