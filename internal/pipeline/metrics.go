package pipeline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics instruments pipeline runs.
type Metrics struct {
	runs         *prometheus.CounterVec
	stepDuration *prometheus.HistogramVec
	stepFailures *prometheus.CounterVec
	components   prometheus.Histogram
}

// NewMetrics registers the pipeline collectors with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentsite",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Site generation runs by outcome.",
		}, []string{"outcome"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "agentsite",
			Subsystem: "pipeline",
			Name:      "step_duration_seconds",
			Help:      "Duration of each pipeline step.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		}, []string{"step"}),
		stepFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "agentsite",
			Subsystem: "pipeline",
			Name:      "step_failures_total",
			Help:      "Pipeline failures by step.",
		}, []string{"step"}),
		components: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "agentsite",
			Subsystem: "pipeline",
			Name:      "components",
			Help:      "Components generated per site.",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}),
	}
	for _, c := range []prometheus.Collector{m.runs, m.stepDuration, m.stepFailures, m.components} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observeStep(step string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
	if err != nil {
		m.stepFailures.WithLabelValues(step).Inc()
	}
}

func (m *Metrics) observeRun(err error, components int) {
	if m == nil {
		return
	}
	if err != nil {
		m.runs.WithLabelValues("failure").Inc()
		return
	}
	m.runs.WithLabelValues("success").Inc()
	m.components.Observe(float64(components))
}
