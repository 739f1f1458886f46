package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeApplied  = "applied"
	OutcomeDropped  = "dropped"
	OutcomeRetried  = "retried"
	OutcomeFailed   = "failed"
	OutcomeStale    = "stale"
	OutcomeInternal = "error"
)

// CapacityJobMetrics records deferred capacity job executions.
// A nil receiver is valid and records nothing.
type CapacityJobMetrics struct {
	duration *prometheus.HistogramVec
	outcomes *prometheus.CounterVec
	claimed  prometheus.Counter
	lag      prometheus.Histogram
}

func NewCapacityJobMetrics(reg prometheus.Registerer) *CapacityJobMetrics {
	if reg == nil {
		return &CapacityJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "capacity_job_duration_seconds",
		Help:    "Duration of capacity job executions in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"direction"})
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "capacity_job_outcomes_total",
		Help: "Capacity job executions by direction and outcome.",
	}, []string{"direction", "outcome"})
	claimed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "capacity_jobs_claimed_total",
		Help: "Capacity jobs claimed by the worker.",
	})
	lag := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "capacity_job_fire_lag_seconds",
		Help:    "Delay between a job's scheduled fire time and its execution.",
		Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 300},
	})
	reg.MustRegister(duration, outcomes, claimed, lag)
	return &CapacityJobMetrics{
		duration: duration,
		outcomes: outcomes,
		claimed:  claimed,
		lag:      lag,
	}
}

func (m *CapacityJobMetrics) ObserveDuration(direction string, d time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(direction)).Observe(d.Seconds())
}

func (m *CapacityJobMetrics) IncOutcome(direction, outcome string) {
	if m == nil || m.outcomes == nil {
		return
	}
	m.outcomes.WithLabelValues(normalizeLabel(direction), normalizeLabel(outcome)).Inc()
}

func (m *CapacityJobMetrics) IncClaimed() {
	if m == nil || m.claimed == nil {
		return
	}
	m.claimed.Inc()
}

func (m *CapacityJobMetrics) ObserveLag(lag time.Duration) {
	if m == nil || m.lag == nil {
		return
	}
	m.lag.Observe(max(0, lag.Seconds()))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
