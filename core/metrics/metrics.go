package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for the planning pipeline and its
// external providers.
type Metrics struct {
	planOutcomes     *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	providerDuration *prometheus.HistogramVec
	providerFailures *prometheus.CounterVec
}

// New registers the collectors with reg. Passing a fresh registry keeps
// tests isolated from the default one.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		planOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dateplanner",
				Subsystem: "plan",
				Name:      "outcomes_total",
				Help:      "Plan synthesis runs by kind and terminal outcome.",
			},
			[]string{"kind", "outcome"},
		),
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dateplanner",
				Subsystem: "plan",
				Name:      "stage_duration_seconds",
				Help:      "Time spent in each plan synthesis stage.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"stage"},
		),
		providerDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "dateplanner",
				Subsystem: "provider",
				Name:      "call_duration_seconds",
				Help:      "Latency of calls to external providers.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"provider", "operation"},
		),
		providerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "dateplanner",
				Subsystem: "provider",
				Name:      "failures_total",
				Help:      "Failed calls to external providers.",
			},
			[]string{"provider", "operation"},
		),
	}

	reg.MustRegister(m.planOutcomes, m.stageDuration, m.providerDuration, m.providerFailures)
	return m
}

func (m *Metrics) IncPlanOutcome(kind, outcome string) {
	if m == nil {
		return
	}
	m.planOutcomes.WithLabelValues(kind, outcome).Inc()
}

func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// ObserveProvider records one provider call; err marks it failed.
func (m *Metrics) ObserveProvider(provider, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.providerDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.providerFailures.WithLabelValues(provider, operation).Inc()
	}
}
