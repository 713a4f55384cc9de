package pipeline

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_ObserveRunAndStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("new metrics: %v", err)
	}

	m.observeStep(StepPlan, time.Second, nil)
	m.observeStep(StepDeploy, time.Second, errors.New("boom"))
	m.observeRun(nil, 3)
	m.observeRun(errors.New("boom"), 0)

	if got := testutil.ToFloat64(m.runs.WithLabelValues("success")); got != 1 {
		t.Fatalf("success runs = %v", got)
	}
	if got := testutil.ToFloat64(m.runs.WithLabelValues("failure")); got != 1 {
		t.Fatalf("failure runs = %v", got)
	}
	if got := testutil.ToFloat64(m.stepFailures.WithLabelValues(StepDeploy)); got != 1 {
		t.Fatalf("deploy failures = %v", got)
	}
	if got := testutil.CollectAndCount(m.stepDuration); got != 2 {
		t.Fatalf("expected 2 step series, got %d", got)
	}

	if _, err := NewMetrics(reg); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.observeStep(StepPlan, time.Second, nil)
	m.observeRun(nil, 1)
}
