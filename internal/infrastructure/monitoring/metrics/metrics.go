// Package metrics exposes the prometheus instrumentation for the
// reconciliation pipeline.  All observation methods are safe to call on a nil
// *Metrics so the core never guards instrumentation behind feature checks.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "chemreconcile"

// Metrics bundles the pipeline's counters and histograms.
type Metrics struct {
	lookupsTotal      *prometheus.CounterVec
	lookupRetries     prometheus.Counter
	verdictsTotal     *prometheus.CounterVec
	runsTotal         prometheus.Counter
	runDurationSecond prometheus.Histogram
}

// New registers the pipeline metrics with reg and returns the handle.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		lookupsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "External database lookups by namespace and outcome.",
		}, []string{"namespace", "outcome"}),
		lookupRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookup_retries_total",
			Help:      "Lookup attempts retried after a transient failure.",
		}),
		verdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Per-record verdicts by final status.",
		}, []string{"status"}),
		runsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Reconciliation runs started.",
		}),
		runDurationSecond: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of a full reconciliation run.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
	}
	reg.MustRegister(m.lookupsTotal, m.lookupRetries, m.verdictsTotal, m.runsTotal, m.runDurationSecond)
	return m
}

// LookupObserved counts one lookup outcome for a namespace.
func (m *Metrics) LookupObserved(namespace, outcome string) {
	if m == nil {
		return
	}
	m.lookupsTotal.WithLabelValues(namespace, outcome).Inc()
}

// RetryObserved counts one retried lookup attempt.
func (m *Metrics) RetryObserved() {
	if m == nil {
		return
	}
	m.lookupRetries.Inc()
}

// VerdictObserved counts one record verdict by status.
func (m *Metrics) VerdictObserved(status string) {
	if m == nil {
		return
	}
	m.verdictsTotal.WithLabelValues(status).Inc()
}

// RunObserved counts a run and records its duration in seconds.
func (m *Metrics) RunObserved(seconds float64) {
	if m == nil {
		return
	}
	m.runsTotal.Inc()
	m.runDurationSecond.Observe(seconds)
}
