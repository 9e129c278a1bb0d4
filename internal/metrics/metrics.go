package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	EmailsSent       prometheus.Counter
	EmailsFailed     prometheus.Counter
	EmailLatency     prometheus.Histogram
	PushMessagesSent prometheus.Counter
	PushTokenErrors  prometheus.Counter
	RecordsSwept     prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer.
// Using a custom registry (instead of prometheus.DefaultRegisterer)
// keeps tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EmailsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_sent_total",
			Help: "Total number of successfully delivered email notifications.",
		}),
		EmailsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "emails_failed_total",
			Help: "Total number of email notifications whose single delivery attempt failed.",
		}),
		EmailLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "email_delivery_seconds",
			Help:    "Delivery latency from dequeue to mail transport ack.",
			Buckets: prometheus.DefBuckets,
		}),
		PushMessagesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_messages_sent_total",
			Help: "Total number of per-device push messages accepted by the transport.",
		}),
		PushTokenErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "push_token_errors_total",
			Help: "Total number of per-device push messages rejected by the transport.",
		}),
		RecordsSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notification_records_swept_total",
			Help: "Total number of notification records deleted by the retention sweeper.",
		}),
	}

	reg.MustRegister(
		m.EmailsSent,
		m.EmailsFailed,
		m.EmailLatency,
		m.PushMessagesSent,
		m.PushTokenErrors,
		m.RecordsSwept,
	)

	return m
}

// RegisterQueueDepth exposes the delivery queue depth as a gauge
// sampled at scrape time, so no background sampler is needed.
func RegisterQueueDepth(reg prometheus.Registerer, depth func() int) {
	reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "delivery_queue_depth",
		Help: "Current number of email records waiting in the delivery queue.",
	}, func() float64 { return float64(depth()) }))
}

// MailWorkerHooks returns the metric callbacks expected by the worker
// pool. Centralises the prometheus observation calls so the worker
// package stays metrics-agnostic.
func (m *Metrics) MailWorkerHooks() (onSent func(time.Duration), onFailed func()) {
	onSent = func(latency time.Duration) {
		m.EmailsSent.Inc()
		m.EmailLatency.Observe(latency.Seconds())
	}
	onFailed = func() {
		m.EmailsFailed.Inc()
	}
	return
}

// ObservePushResults counts per-device outcomes from one batched send.
func (m *Metrics) ObservePushResults(succeeded, failed int) {
	m.PushMessagesSent.Add(float64(succeeded))
	m.PushTokenErrors.Add(float64(failed))
}
