// Package telemetry exposes Prometheus metrics for the risk assessment
// service: HTTP traffic, assessment outcomes, readiness evaluations and
// disclosure stage transitions. A nil *Metrics is valid and records nothing.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "healthrisk"

// Metrics holds every collector the service records to.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	assessments         *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
	computeDuration     *prometheus.HistogramVec

	readinessEvaluations *prometheus.CounterVec
	disclosureStages     *prometheus.CounterVec
}

// New builds a Metrics with its own registry, including Go runtime and
// process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Completed risk assessments by module and level.",
		}, []string{"module", "level"}),
		validationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_validation_failures_total",
			Help:      "Assessment inputs rejected by factor extraction.",
		}, []string{"module"}),
		persistenceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_persistence_failures_total",
			Help:      "Computed results that could not be stored.",
		}, []string{"module"}),
		computeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "assessment_compute_duration_seconds",
			Help:      "Time spent extracting and scoring one assessment.",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .05},
		}, []string{"module"}),
		readinessEvaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "readiness_evaluations_total",
			Help:      "Readiness gate evaluations by outcome.",
		}, []string{"outcome"}),
		disclosureStages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "disclosure_stage_transitions_total",
			Help:      "Disclosure state transitions by style and stage.",
		}, []string{"style", "stage"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration,
		m.assessments, m.validationFailures, m.persistenceFailures, m.computeDuration,
		m.readinessEvaluations, m.disclosureStages,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency keyed by the matched route.
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if m == nil {
				return next(c)
			}
			start := time.Now()
			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok {
				status = he.Code
			}
			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			m.httpRequests.WithLabelValues(c.Request().Method, route, strconv.Itoa(status)).Inc()
			m.httpDuration.WithLabelValues(c.Request().Method, route).Observe(time.Since(start).Seconds())
			return err
		}
	}
}

// AssessmentCompleted records a successful computation.
func (m *Metrics) AssessmentCompleted(module, level string, took time.Duration) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(module, level).Inc()
	m.computeDuration.WithLabelValues(module).Observe(took.Seconds())
}

// ValidationFailed records rejected input.
func (m *Metrics) ValidationFailed(module string) {
	if m == nil {
		return
	}
	m.validationFailures.WithLabelValues(module).Inc()
}

// PersistenceFailed records a failed result write.
func (m *Metrics) PersistenceFailed(module string) {
	if m == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(module).Inc()
}

// ReadinessEvaluated records a gate decision ("ready" or "not_ready").
func (m *Metrics) ReadinessEvaluated(outcome string) {
	if m == nil {
		return
	}
	m.readinessEvaluations.WithLabelValues(outcome).Inc()
}

// DisclosureTransition records the orchestrator entering stage.
func (m *Metrics) DisclosureTransition(style, stage string) {
	if m == nil {
		return
	}
	m.disclosureStages.WithLabelValues(style, stage).Inc()
}
