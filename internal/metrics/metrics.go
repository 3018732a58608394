// Package metrics provides the Prometheus collectors for the planner
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "mealplanner"

// Metrics groups every collector the service exports. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	retrievalDuration  *prometheus.HistogramVec
	fallbacksTotal     *prometheus.CounterVec
	plansTotal         *prometheus.CounterVec
	coverageGapsTotal  *prometheus.CounterVec
	validationFailures *prometheus.CounterVec
	feedbackTotal      *prometheus.CounterVec
	httpRequestsTotal  *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
}

// New registers the collectors with reg
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		retrievalDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "retrieval",
				Name:      "duration_seconds",
				Help:      "Candidate retrieval latency per meal slot",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
			},
			[]string{"strategy"},
		),
		fallbacksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "retrieval",
				Name:      "fallbacks_total",
				Help:      "Filter relaxations applied when a slot had no candidates",
			},
			[]string{"step"},
		),
		plansTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "planner",
				Name:      "plans_total",
				Help:      "Generated plans by kind and outcome",
			},
			[]string{"kind", "status"},
		),
		coverageGapsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "planner",
				Name:      "coverage_gaps_total",
				Help:      "Meal slots left empty for lack of candidates",
			},
			[]string{"meal_type"},
		),
		validationFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validator",
				Name:      "failures_total",
				Help:      "Validation errors by category",
			},
			[]string{"category"},
		),
		feedbackTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "preferences",
				Name:      "feedback_total",
				Help:      "Recipe feedback submissions",
			},
			[]string{"liked"},
		),
		httpRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

// ObserveRetrieval records one retrieval call
func (m *Metrics) ObserveRetrieval(strategy string, d time.Duration) {
	if m == nil {
		return
	}
	m.retrievalDuration.WithLabelValues(strategy).Observe(d.Seconds())
}

// IncFallback counts one fallback step
func (m *Metrics) IncFallback(step string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(step).Inc()
}

// IncPlan counts a generated plan
func (m *Metrics) IncPlan(kind, status string) {
	if m == nil {
		return
	}
	m.plansTotal.WithLabelValues(kind, status).Inc()
}

// IncCoverageGap counts an empty meal slot
func (m *Metrics) IncCoverageGap(mealType string) {
	if m == nil {
		return
	}
	m.coverageGapsTotal.WithLabelValues(mealType).Inc()
}

// AddValidationFailures counts validation errors for a category
func (m *Metrics) AddValidationFailures(category string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.validationFailures.WithLabelValues(category).Add(float64(n))
}

// IncFeedback counts one feedback submission
func (m *Metrics) IncFeedback(liked bool) {
	if m == nil {
		return
	}
	m.feedbackTotal.WithLabelValues(strconv.FormatBool(liked)).Inc()
}

// ObserveHTTP records one served request
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
