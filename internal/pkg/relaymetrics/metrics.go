// Package relaymetrics exposes Prometheus instrumentation for the outbox
// relay. Publish failures are retried internally and never surfaced to the
// original caller, so these metrics are the way sustained relay trouble
// becomes observable.
package relaymetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the relay's instruments.
type Metrics struct {
	// Published counts envelopes accepted by the event sink.
	Published prometheus.Counter

	// Failures counts publish attempts rejected by the sink.
	Failures prometheus.Counter

	// Backlog reports the number of pending rows claimed on the last pass.
	// A value pinned at the batch size indicates the relay is not keeping up.
	Backlog prometheus.Gauge
}

// New creates the relay metrics registered against reg.
// Passing nil creates unregistered instruments, which tests use.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		Published: factory.NewCounter(prometheus.CounterOpts{
			Name: "orders_outbox_published_total",
			Help: "Outbox messages successfully delivered to the event sink.",
		}),
		Failures: factory.NewCounter(prometheus.CounterOpts{
			Name: "orders_outbox_publish_failures_total",
			Help: "Outbox publish attempts rejected by the event sink.",
		}),
		Backlog: factory.NewGauge(prometheus.GaugeOpts{
			Name: "orders_outbox_batch_backlog",
			Help: "Pending outbox rows claimed on the most recent relay pass.",
		}),
	}
}
