package orchestrator

import "github.com/prometheus/client_golang/prometheus"

// metrics bundles the orchestrator's prometheus collectors. A nil
// *metrics (built when no registerer is supplied) makes every method a
// no-op, so callers never need to guard instrumentation behind a flag.
type metrics struct {
	stepDuration prometheus.Histogram
	stepFailures prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "greenrun_step_duration_seconds",
			Help:    "Duration of individual workflow steps.",
			Buckets: prometheus.DefBuckets,
		}),
		stepFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "greenrun_step_failures_total",
			Help: "Total number of workflow steps that ended in failure.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.stepDuration, m.stepFailures)
	}
	return m
}

func (m *metrics) observeStep(seconds float64, failed bool) {
	if m == nil {
		return
	}
	m.stepDuration.Observe(seconds)
	if failed {
		m.stepFailures.Inc()
	}
}
