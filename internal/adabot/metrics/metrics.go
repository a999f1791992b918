// Package metrics exposes Prometheus counters for the relay pipeline:
// what came in, what was answered, what was ignored, and what failed.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adabot"

var (
	// EventsReceived counts inbound webhook events by disposition:
	// "answered", "ignored", "ended", "prompted", "skipped".
	EventsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_received_total",
			Help:      "Inbound webhook events by processing disposition",
		},
		[]string{"disposition"},
	)

	// RepliesSent counts outbound replies that were accepted by the
	// messaging platform.
	RepliesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "replies_sent_total",
			Help:      "Replies successfully delivered to the messaging platform",
		},
	)

	// ModelFailures counts failed model gateway calls (transport and API
	// errors alike).
	ModelFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "model_failures_total",
			Help:      "Failed text-completion calls",
		},
	)

	// DeliveryFailures counts replies the messaging platform rejected.
	DeliveryFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "delivery_failures_total",
			Help:      "Replies the messaging platform rejected",
		},
	)

	// ModelLatency tracks the round-trip time of model gateway calls.
	ModelLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "model_latency_seconds",
			Help:      "Model gateway call latency in seconds",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
		},
	)
)

// Dispositions for EventsReceived.
const (
	DispositionAnswered = "answered"
	DispositionIgnored  = "ignored"
	DispositionEnded    = "ended"
	DispositionPrompted = "prompted"
	DispositionSkipped  = "skipped"
)
