// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bureau-foundation/ledgerclient/lib/codec"
	"github.com/bureau-foundation/ledgerclient/lib/envelope"
	"github.com/bureau-foundation/ledgerclient/lib/metrics"
)

// Router turns ledger events into log lines and metrics. Handling an
// event never fails: decode problems are logged at warn level and a
// panic inside a handler is recovered and logged.
type Router struct {
	logger  *slog.Logger
	codec   envelope.Codec
	metrics *metrics.Recorder
}

// NewRouter creates a Router. A nil codec means JSON envelopes; a nil
// recorder disables metrics.
func NewRouter(logger *slog.Logger, messageCodec envelope.Codec, recorder *metrics.Recorder) *Router {
	if messageCodec == nil {
		messageCodec, _ = envelope.For(envelope.JSON)
	}
	return &Router{logger: logger, codec: messageCodec, metrics: recorder}
}

// Run handles events until the channel closes (returning nil) or ctx
// is cancelled (returning ctx.Err()).
func (r *Router) Run(ctx context.Context, events <-chan Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			r.Handle(ctx, event)
		}
	}
}

// Handle processes one event.
func (r *Router) Handle(ctx context.Context, event Event) {
	kind := "unknown"
	if event != nil {
		kind = string(event.Kind())
	}
	logger := r.logger.With("event", kind)

	defer func() {
		if recovered := recover(); recovered != nil {
			logger.ErrorContext(ctx, "event handler panicked", "panic", fmt.Sprint(recovered))
		}
	}()

	r.metrics.EventRouted(kind)

	switch event := event.(type) {
	case ConnectEvent:
		logger.InfoContext(ctx, "connected", "account", event.Account.String())
	case TransferEvent:
		logger.InfoContext(ctx, "transfer", "summary", event.Transfer.String(), "transfer", event.Transfer)
	case MessageEvent:
		r.handleMessage(ctx, logger, event.Message)
	case ErrorEvent:
		logger.ErrorContext(ctx, "ledger error", "error", event.Err)
	default:
		logger.WarnContext(ctx, "unhandled ledger event", "type", fmt.Sprintf("%T", event))
	}
}

func (r *Router) handleMessage(ctx context.Context, logger *slog.Logger, message Message) {
	attrs := []any{
		"from", message.From.String(),
		"to", message.To.String(),
		"size", len(message.Data),
		"digest", envelope.Digest(message.Data),
		"text", envelope.Text(message.Data),
	}
	if r.codec.Format() == envelope.CBOR && codec.Wellformed(message.Data) == nil {
		if diagnostic, err := codec.Diagnose(message.Data); err == nil {
			attrs = append(attrs, "diagnostic", diagnostic)
		}
	}
	logger.InfoContext(ctx, "message", attrs...)

	received, err := r.codec.Decode(message.Data)
	if err != nil {
		r.metrics.DecodeFailed()
		var decodeErr *envelope.DecodeError
		if errors.As(err, &decodeErr) && decodeErr.Field != "" {
			logger.WarnContext(ctx, "message decode failed", "error", err, "field", decodeErr.Field)
			return
		}
		logger.WarnContext(ctx, "message decode failed", "error", err)
		return
	}

	logger.InfoContext(ctx, "message received",
		"id", received.ID,
		"method", received.Method,
		"data_size", len(received.Data),
		"data", envelope.DataText(r.codec.Format(), received.Data),
	)
}
