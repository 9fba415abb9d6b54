package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OutboxMetrics records publisher throughput and backlog.
type OutboxMetrics struct {
	published    prometheus.Counter
	failures     prometheus.Counter
	deadLettered prometheus.Counter
	pending      prometheus.Gauge
	batch        prometheus.Histogram
}

// NewOutboxMetrics registers the outbox metrics on the provided registerer.
func NewOutboxMetrics(reg prometheus.Registerer) *OutboxMetrics {
	if reg == nil {
		return &OutboxMetrics{}
	}
	published := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_published_total",
		Help: "Outbox events published.",
	})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_publish_failures_total",
		Help: "Outbox publish attempts that failed.",
	})
	deadLettered := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "outbox_dead_letters_total",
		Help: "Outbox events moved to the dead letter table.",
	})
	pending := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "outbox_pending_events",
		Help: "Unpublished outbox events at the last poll.",
	})
	batch := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outbox_batch_duration_seconds",
		Help:    "Duration of outbox publish batches in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failures, deadLettered, pending, batch)
	return &OutboxMetrics{
		published:    published,
		failures:     failures,
		deadLettered: deadLettered,
		pending:      pending,
		batch:        batch,
	}
}

// IncPublished increments the published counter.
func (o *OutboxMetrics) IncPublished() {
	if o == nil || o.published == nil {
		return
	}
	o.published.Inc()
}

// IncFailure increments the failure counter.
func (o *OutboxMetrics) IncFailure() {
	if o == nil || o.failures == nil {
		return
	}
	o.failures.Inc()
}

// IncDeadLettered increments the dead letter counter.
func (o *OutboxMetrics) IncDeadLettered() {
	if o == nil || o.deadLettered == nil {
		return
	}
	o.deadLettered.Inc()
}

// SetPending records the unpublished backlog size.
func (o *OutboxMetrics) SetPending(n int) {
	if o == nil || o.pending == nil {
		return
	}
	o.pending.Set(float64(n))
}

// ObserveBatch records the duration of one publish batch.
func (o *OutboxMetrics) ObserveBatch(duration time.Duration) {
	if o == nil || o.batch == nil {
		return
	}
	o.batch.Observe(duration.Seconds())
}
