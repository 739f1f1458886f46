package metrics

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestCapacityJobMetricsExportsOutcomesAndDuration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewCapacityJobMetrics(reg)

	m.IncClaimed()
	m.ObserveDuration("decrement", 120*time.Millisecond)
	m.IncOutcome("decrement", OutcomeApplied)
	m.IncOutcome("increment", OutcomeDropped)
	m.ObserveLag(-time.Second)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}

	if got, err := fetchCounter(mfs, "capacity_job_outcomes_total", map[string]string{"direction": "decrement", "outcome": OutcomeApplied}); err != nil {
		t.Fatalf("fetch applied: %v", err)
	} else if got != 1 {
		t.Fatalf("expected applied=1, got %f", got)
	}

	if got, err := fetchCounter(mfs, "capacity_job_outcomes_total", map[string]string{"direction": "increment", "outcome": OutcomeDropped}); err != nil {
		t.Fatalf("fetch dropped: %v", err)
	} else if got != 1 {
		t.Fatalf("expected dropped=1, got %f", got)
	}

	mf := findMetricFamily(mfs, "capacity_job_duration_seconds")
	if mf == nil || mf.GetMetric()[0].GetHistogram().GetSampleSum() <= 0 {
		t.Fatalf("expected duration sample to be recorded")
	}

	lag := findMetricFamily(mfs, "capacity_job_fire_lag_seconds")
	if lag == nil || lag.GetMetric()[0].GetHistogram().GetSampleSum() != 0 {
		t.Fatalf("expected negative lag to clamp to zero")
	}
}

func TestEventMetricsSplitsFailures(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewEventMetrics(reg)

	m.Observe("booking.created", time.Millisecond, nil)
	m.Observe("booking.created", time.Millisecond, errors.New("broker down"))

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	labels := map[string]string{"event_type": "booking.created"}
	if got, _ := fetchCounter(mfs, "events_published_total", labels); got != 1 {
		t.Fatalf("expected published=1, got %f", got)
	}
	if got, _ := fetchCounter(mfs, "events_publish_failures_total", labels); got != 1 {
		t.Fatalf("expected failures=1, got %f", got)
	}
}

func TestHTTPMetricsCountsByStatus(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.Observe("POST", "/api/v1/bookings", 201, 5*time.Millisecond)
	m.Observe("POST", "/api/v1/bookings", 400, 5*time.Millisecond)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	got, err := fetchCounter(mfs, "http_requests_total", map[string]string{"method": "POST", "route": "/api/v1/bookings", "status": "400"})
	if err != nil || got != 1 {
		t.Fatalf("expected one 400 request, got %f (%v)", got, err)
	}
}

func TestNilMetricsAreSafe(t *testing.T) {
	var capacity *CapacityJobMetrics
	capacity.IncClaimed()
	capacity.IncOutcome("decrement", OutcomeApplied)
	capacity.ObserveDuration("decrement", time.Second)

	unregistered := NewCapacityJobMetrics(nil)
	unregistered.IncOutcome("increment", OutcomeFailed)

	var events *EventMetrics
	events.Observe("x", time.Second, nil)

	var httpMetrics *HTTPMetrics
	httpMetrics.Observe("GET", "/", 200, time.Second)
}

func fetchCounter(mfs []*dto.MetricFamily, name string, labels map[string]string) (float64, error) {
	mf := findMetricFamily(mfs, name)
	if mf == nil {
		return 0, fmt.Errorf("metric %q not found", name)
	}
	for _, metric := range mf.GetMetric() {
		if matchesLabels(metric.GetLabel(), labels) {
			return metric.GetCounter().GetValue(), nil
		}
	}
	return 0, fmt.Errorf("metric %q missing labels %v", name, labels)
}

func findMetricFamily(mfs []*dto.MetricFamily, name string) *dto.MetricFamily {
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func matchesLabels(pairs []*dto.LabelPair, want map[string]string) bool {
	matched := 0
	for _, pair := range pairs {
		if v, ok := want[pair.GetName()]; ok && v == pair.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
