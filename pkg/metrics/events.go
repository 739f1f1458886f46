package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type EventMetrics struct {
	published *prometheus.CounterVec
	failed    *prometheus.CounterVec
	duration  prometheus.Histogram
}

func NewEventMetrics(reg prometheus.Registerer) *EventMetrics {
	if reg == nil {
		return &EventMetrics{}
	}
	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_published_total",
		Help: "Domain events published by type.",
	}, []string{"event_type"})
	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "events_publish_failures_total",
		Help: "Domain events that failed to publish by type.",
	}, []string{"event_type"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "events_publish_duration_seconds",
		Help:    "Latency of event publishing in seconds.",
		Buckets: prometheus.DefBuckets,
	})
	reg.MustRegister(published, failed, duration)
	return &EventMetrics{published: published, failed: failed, duration: duration}
}

func (m *EventMetrics) Observe(eventType string, d time.Duration, err error) {
	if m == nil || m.published == nil {
		return
	}
	m.duration.Observe(d.Seconds())
	if err != nil {
		m.failed.WithLabelValues(normalizeLabel(eventType)).Inc()
		return
	}
	m.published.WithLabelValues(normalizeLabel(eventType)).Inc()
}
