// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ledger_client"

// Command outcome label values.
const (
	OutcomeOK     = "ok"
	OutcomeFailed = "failed"
)

// Recorder holds the client's collectors.
type Recorder struct {
	registry *prometheus.Registry

	commands        *prometheus.CounterVec
	commandDuration *prometheus.HistogramVec
	events          *prometheus.CounterVec
	decodeFailures  prometheus.Counter
	transfers       *prometheus.CounterVec
}

// New creates a Recorder with its collectors registered, plus the
// standard Go runtime and process collectors.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands dispatched, by command name and outcome.",
		}, []string{"command", "outcome"}),
		commandDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "command_duration_seconds",
			Help:      "Time spent running a command body.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"command"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Ledger events routed, by kind.",
		}, []string{"kind"}),
		decodeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "envelope_decode_failures_total",
			Help:      "Incoming messages whose payload was not a valid envelope.",
		}),
		transfers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transfers_submitted_total",
			Help:      "Transfers handed to the ledger adapter, by outcome.",
		}, []string{"outcome"}),
	}

	r.registry.MustRegister(
		r.commands,
		r.commandDuration,
		r.events,
		r.decodeFailures,
		r.transfers,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// CommandDispatched counts one dispatched command. An unknown command
// is recorded under the name "unknown" to keep label cardinality
// bounded by the registry.
func (r *Recorder) CommandDispatched(command, outcome string, duration time.Duration) {
	if r == nil {
		return
	}
	r.commands.WithLabelValues(command, outcome).Inc()
	if duration > 0 {
		r.commandDuration.WithLabelValues(command).Observe(duration.Seconds())
	}
}

// EventRouted counts one ledger event by kind.
func (r *Recorder) EventRouted(kind string) {
	if r == nil {
		return
	}
	r.events.WithLabelValues(kind).Inc()
}

// DecodeFailed counts one message payload that failed envelope decoding.
func (r *Recorder) DecodeFailed() {
	if r == nil {
		return
	}
	r.decodeFailures.Inc()
}

// TransferSubmitted counts one transfer handed to the adapter.
func (r *Recorder) TransferSubmitted(outcome string) {
	if r == nil {
		return
	}
	r.transfers.WithLabelValues(outcome).Inc()
}

// Registry returns the underlying registry, for tests and for callers
// that add their own collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
