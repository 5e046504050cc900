package metrics

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPlanOutcomeCounter(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.IncPlanOutcome("couple", "success")
	m.IncPlanOutcome("couple", "success")
	m.IncPlanOutcome("couple", "NO_MUTUAL_FREE_TIME")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.planOutcomes.WithLabelValues("couple", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.planOutcomes.WithLabelValues("couple", "NO_MUTUAL_FREE_TIME")))
}

func TestProviderFailuresCounted(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveProvider("places", "search", time.Now(), nil)
	m.ObserveProvider("places", "search", time.Now(), fmt.Errorf("timeout"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.providerFailures.WithLabelValues("places", "search")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncPlanOutcome("legacy", "success")
		m.ObserveStage("generating_ideas", time.Second)
		m.ObserveProvider("llm", "ideas", time.Now(), nil)
	})
}
