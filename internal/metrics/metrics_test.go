package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncFallback("drop_recency")
	m.IncFallback("drop_recency")
	m.IncFallback("relax_prep_time")
	m.IncPlan("daily", "ok")
	m.IncCoverageGap("snacks")
	m.AddValidationFailures("safety", 2)
	m.AddValidationFailures("schema", 0)
	m.IncFeedback(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fallbacksTotal.WithLabelValues("drop_recency")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbacksTotal.WithLabelValues("relax_prep_time")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.plansTotal.WithLabelValues("daily", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.coverageGapsTotal.WithLabelValues("snacks")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.validationFailures.WithLabelValues("safety")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.feedbackTotal.WithLabelValues("true")))
}

func TestHistograms(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveRetrieval("advanced", 20*time.Millisecond)
	m.ObserveHTTP("POST", "/api/v1/plans/daily", 200, 50*time.Millisecond)

	n, err := testutil.GatherAndCount(reg, "mealplanner_retrieval_duration_seconds", "mealplanner_http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncFallback("x")
		m.IncPlan("daily", "ok")
		m.ObserveRetrieval("simple", time.Second)
		m.ObserveHTTP("GET", "/", 200, time.Second)
		m.IncFeedback(false)
	})
}
