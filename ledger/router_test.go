// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bureau-foundation/ledgerclient/lib/address"
	"github.com/bureau-foundation/ledgerclient/lib/envelope"
	"github.com/bureau-foundation/ledgerclient/lib/metrics"
	"github.com/bureau-foundation/ledgerclient/lib/testutil"
)

// counterValue sums every series of the named counter in recorder.
func counterValue(t *testing.T, recorder *metrics.Recorder, name string) float64 {
	t.Helper()
	families, err := recorder.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			total += metric.GetCounter().GetValue()
		}
	}
	return total
}

func newTestRouter(t *testing.T, format envelope.Format) (*Router, *testutil.LogBuffer, *metrics.Recorder) {
	t.Helper()
	logger, logs := testutil.NewLogger()
	messageCodec, err := envelope.For(format)
	if err != nil {
		t.Fatal(err)
	}
	recorder := metrics.New()
	return NewRouter(logger, messageCodec, recorder), logs, recorder
}

func incoming(data []byte) MessageEvent {
	return MessageEvent{Message: Message{
		From: address.MustParse("g.usd.alice"),
		To:   address.MustParse("g.usd.bob"),
		Data: data,
	}}
}

func TestRouter_Connect(t *testing.T) {
	router, logs, recorder := newTestRouter(t, envelope.JSON)

	router.Handle(context.Background(), ConnectEvent{Account: address.MustParse("g.usd.bob")})

	record := logs.Find("connected")
	if record == nil {
		t.Fatalf("no connected log line in:\n%s", logs)
	}
	if record["level"] != "INFO" || record["account"] != "g.usd.bob" || record["event"] != "connect" {
		t.Errorf("unexpected record %v", record)
	}
	if got := counterValue(t, recorder, "ledger_client_events_total"); got != 1 {
		t.Errorf("events_total = %v, want 1", got)
	}
}

func TestRouter_Transfer(t *testing.T) {
	router, logs, _ := newTestRouter(t, envelope.JSON)
	transfer, err := BuildTransfer(usdLedger(), localAccount, "alice", "3")
	if err != nil {
		t.Fatal(err)
	}

	router.Handle(context.Background(), TransferEvent{Transfer: transfer})

	record := logs.Find("transfer")
	if record == nil {
		t.Fatalf("no transfer log line in:\n%s", logs)
	}
	if record["summary"] != transfer.String() {
		t.Errorf("summary = %v, want %s", record["summary"], transfer)
	}
	group, ok := record["transfer"].(map[string]any)
	if !ok {
		t.Fatalf("transfer attribute = %v, want group", record["transfer"])
	}
	if group["amount"] != "3.00 USD" || group["to"] != "g.usd.alice" {
		t.Errorf("transfer group = %v", group)
	}
}

func TestRouter_MessageReceived(t *testing.T) {
	router, logs, recorder := newTestRouter(t, envelope.JSON)

	router.Handle(context.Background(), incoming([]byte(`{"id":"m1","data":"eyJ4IjoxfQ=="}`)))

	message := logs.Find("message")
	if message == nil {
		t.Fatalf("no message log line in:\n%s", logs)
	}
	if message["size"] != float64(33) {
		t.Errorf("size = %v, want 33", message["size"])
	}
	if message["digest"] == "" || message["digest"] == nil {
		t.Error("message line has no digest")
	}

	received := logs.Find("message received")
	if received == nil {
		t.Fatalf("no message received log line in:\n%s", logs)
	}
	if received["id"] != "m1" {
		t.Errorf("id = %v, want m1", received["id"])
	}
	if received["data"] != `{"x":1}` {
		t.Errorf("data = %v, want {\"x\":1}", received["data"])
	}
	if received["data_size"] != float64(14) {
		t.Errorf("data_size = %v, want 14", received["data_size"])
	}
	if got := counterValue(t, recorder, "ledger_client_envelope_decode_failures_total"); got != 0 {
		t.Errorf("decode failures = %v, want 0", got)
	}
}

func TestRouter_MessageStructuredData(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantData string
	}{
		{"object", `{"id":"m1","data":{"x":1}}`, `{"x":1}`},
		{"plain string", `{"id":"m1","data":"hello"}`, "hello"},
		{"method and nested data", `{"id":"m1","method":"quote_request","data":{"amount":"10.00","path":["g","usd"]}}`, `{"amount":"10.00","path":["g","usd"]}`},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			router, logs, recorder := newTestRouter(t, envelope.JSON)

			router.Handle(context.Background(), incoming([]byte(test.payload)))

			received := logs.Find("message received")
			if received == nil {
				t.Fatalf("no message received log line in:\n%s", logs)
			}
			if received["id"] != "m1" {
				t.Errorf("id = %v, want m1", received["id"])
			}
			if received["data"] != test.wantData {
				t.Errorf("data = %v, want %s", received["data"], test.wantData)
			}
			if got := counterValue(t, recorder, "ledger_client_envelope_decode_failures_total"); got != 0 {
				t.Errorf("decode failures = %v, want 0", got)
			}
		})
	}
}

func TestRouter_MessageDecodeFailure(t *testing.T) {
	router, logs, recorder := newTestRouter(t, envelope.JSON)

	payloads := [][]byte{
		[]byte("not json at all"),
		[]byte(`{"id":"m1"}`),
		{0xff, 0xfe, 0x00},
	}
	for _, payload := range payloads {
		router.Handle(context.Background(), incoming(payload))
	}

	var failures int
	for _, record := range logs.Records() {
		if record["msg"] == "message decode failed" {
			failures++
			if record["level"] != "WARN" {
				t.Errorf("decode failure logged at %v, want WARN", record["level"])
			}
		}
		if record["msg"] == "message received" {
			t.Errorf("unexpected message received: %v", record)
		}
	}
	if failures != len(payloads) {
		t.Errorf("decode failures logged = %d, want %d", failures, len(payloads))
	}
	if got := counterValue(t, recorder, "ledger_client_envelope_decode_failures_total"); got != float64(len(payloads)) {
		t.Errorf("decode failures metric = %v, want %d", got, len(payloads))
	}

	// The missing-field case names the field.
	for _, record := range logs.Records() {
		if record["msg"] == "message decode failed" && record["field"] == "data" {
			return
		}
	}
	t.Error("no decode failure named the missing data field")
}

func TestRouter_MessageInvalidUTF8(t *testing.T) {
	router, logs, _ := newTestRouter(t, envelope.JSON)

	router.Handle(context.Background(), incoming([]byte{'h', 'i', 0xff}))

	message := logs.Find("message")
	if message == nil {
		t.Fatal("no message log line")
	}
	if message["text"] != "hi�" {
		t.Errorf("text = %q, want replacement character", message["text"])
	}
}

func TestRouter_CBORMessage(t *testing.T) {
	router, logs, _ := newTestRouter(t, envelope.CBOR)
	messageCodec, _ := envelope.For(envelope.CBOR)
	payload, err := envelope.DataFromText(envelope.CBOR, "hello")
	if err != nil {
		t.Fatal(err)
	}
	data, err := messageCodec.Encode(envelope.Envelope{ID: "m2", Method: "quote", Data: payload})
	if err != nil {
		t.Fatal(err)
	}

	router.Handle(context.Background(), incoming(data))

	message := logs.Find("message")
	if message == nil || message["diagnostic"] == nil {
		t.Fatalf("CBOR message line missing diagnostic: %v", message)
	}
	received := logs.Find("message received")
	if received == nil {
		t.Fatalf("no message received line in:\n%s", logs)
	}
	if received["id"] != "m2" || received["method"] != "quote" || received["data"] != "hello" {
		t.Errorf("unexpected record %v", received)
	}
}

func TestRouter_CBORMessageMalformed(t *testing.T) {
	router, logs, _ := newTestRouter(t, envelope.CBOR)

	router.Handle(context.Background(), incoming([]byte{0xa2, 0x62, 'i'}))

	message := logs.Find("message")
	if message == nil {
		t.Fatalf("no message line in:\n%s", logs)
	}
	if _, ok := message["diagnostic"]; ok {
		t.Errorf("malformed CBOR has a diagnostic: %v", message)
	}
	if logs.Find("message decode failed") == nil {
		t.Errorf("no decode failure in:\n%s", logs)
	}
}

func TestRouter_ErrorEvent(t *testing.T) {
	router, logs, _ := newTestRouter(t, envelope.JSON)

	router.Handle(context.Background(), ErrorEvent{Err: errors.New("connection reset")})

	record := logs.Find("ledger error")
	if record == nil {
		t.Fatalf("no ledger error line in:\n%s", logs)
	}
	if record["level"] != "ERROR" {
		t.Errorf("level = %v, want ERROR", record["level"])
	}
	if record["error"] != "connection reset" {
		t.Errorf("error = %v, want connection reset", record["error"])
	}
}

type strayEvent struct{}

func (strayEvent) Kind() EventKind { return "stray" }
func (strayEvent) isEvent()        {}

func TestRouter_UnknownVariant(t *testing.T) {
	router, logs, _ := newTestRouter(t, envelope.JSON)

	router.Handle(context.Background(), strayEvent{})
	router.Handle(context.Background(), nil)

	var unhandled int
	for _, record := range logs.Records() {
		if record["msg"] == "unhandled ledger event" {
			unhandled++
		}
	}
	if unhandled != 2 {
		t.Errorf("unhandled lines = %d, want 2\n%s", unhandled, logs)
	}
}

type panickingCodec struct{}

func (panickingCodec) Format() envelope.Format { return envelope.JSON }
func (panickingCodec) Decode([]byte) (envelope.Envelope, error) {
	panic("decoder bug")
}
func (panickingCodec) Encode(envelope.Envelope) ([]byte, error) { return nil, nil }

func TestRouter_RecoversPanic(t *testing.T) {
	logger, logs := testutil.NewLogger()
	router := NewRouter(logger, panickingCodec{}, nil)

	router.Handle(context.Background(), incoming([]byte(`{}`)))

	record := logs.Find("event handler panicked")
	if record == nil {
		t.Fatalf("panic was not logged:\n%s", logs)
	}
	if record["panic"] != "decoder bug" || record["event"] != "message" {
		t.Errorf("unexpected record %v", record)
	}
}

func TestRouter_RunDrainsUntilClosed(t *testing.T) {
	router, logs, recorder := newTestRouter(t, envelope.JSON)

	events := make(chan Event, 3)
	events <- ConnectEvent{Account: address.MustParse("g.usd.bob")}
	events <- ErrorEvent{Err: errors.New("connection reset")}
	events <- incoming([]byte(`{"id":"m1","data":""}`))
	close(events)

	if err := router.Run(context.Background(), events); err != nil {
		t.Fatalf("Run = %v, want nil after close", err)
	}
	if got := counterValue(t, recorder, "ledger_client_events_total"); got != 3 {
		t.Errorf("events_total = %v, want 3", got)
	}
	if logs.Find("message received") == nil {
		t.Error("event after an error event was not handled")
	}
}

func TestRouter_RunStopsOnCancel(t *testing.T) {
	router, _, _ := newTestRouter(t, envelope.JSON)
	ctx, cancel := context.WithCancel(context.Background())

	result := make(chan error, 1)
	go func() { result <- router.Run(ctx, make(chan Event)) }()
	cancel()

	err := testutil.RequireReceive(t, result, 5*time.Second, "waiting for Run to return")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}
