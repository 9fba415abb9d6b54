package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReservationMetrics records reservation coordinator activity.
type ReservationMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewReservationMetrics registers the reservation metrics on the provided registerer.
func NewReservationMetrics(reg prometheus.Registerer) *ReservationMetrics {
	if reg == nil {
		return &ReservationMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reservation_requests_total",
		Help: "Reservation operations by outcome.",
	}, []string{"operation", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reservation_duration_seconds",
		Help:    "Duration of reservation operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
	reg.MustRegister(requests, duration)
	return &ReservationMetrics{
		requests: requests,
		duration: duration,
	}
}

// IncRequest increments the request counter for the operation and outcome.
func (r *ReservationMetrics) IncRequest(operation, outcome string) {
	if r == nil || r.requests == nil {
		return
	}
	r.requests.WithLabelValues(normalizeLabel(operation), normalizeLabel(outcome)).Inc()
}

// ObserveDuration records the duration for the named operation.
func (r *ReservationMetrics) ObserveDuration(operation string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(operation)).Observe(duration.Seconds())
}
