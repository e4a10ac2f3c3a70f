// Package metrics exposes Prometheus metrics for verification runs and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/rostercheck/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Completed runs and their latency
	RunsCompleted prometheus.Counter
	RunDuration   prometheus.Histogram

	// Failed runs by reason: a parse error kind, "busy", "canceled" or "internal"
	RunsFailed *prometheus.CounterVec

	// Discrepancy entries found, by category
	Discrepancies *prometheus.CounterVec

	// HTTP requests by method, route pattern and status
	Requests        *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New registers all metrics with reg. A nil reg uses a fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "rostercheck_verifications_total",
			Help: "Total verification runs that produced a report",
		}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "rostercheck_verification_duration_seconds",
			Help:    "Duration of verification runs including parsing",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		RunsFailed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rostercheck_verification_failures_total",
			Help: "Total verification runs that failed, by reason",
		}, []string{"reason"}),
		Discrepancies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rostercheck_discrepancies_total",
			Help: "Total discrepancy entries reported, by category",
		}, []string{"category"}),
		Requests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "rostercheck_http_requests_total",
			Help: "Total HTTP requests by method, route and status",
		}, []string{"method", "route", "status"}),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "rostercheck_http_request_duration_seconds",
			Help:    "Duration of HTTP requests by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		gatherer: reg,
	}
}

// RunCompleted records a successful verification run.
func (m *Metrics) RunCompleted(d time.Duration, s core.DiscrepancySummary) {
	if m == nil {
		return
	}
	m.RunsCompleted.Inc()
	m.RunDuration.Observe(d.Seconds())
	m.Discrepancies.WithLabelValues("wrong_course").Add(float64(s.WrongCourse))
	m.Discrepancies.WithLabelValues("no_course").Add(float64(s.NoCourse))
	m.Discrepancies.WithLabelValues("unknown_course").Add(float64(s.UnknownCourse))
	m.Discrepancies.WithLabelValues("without_details").Add(float64(s.WithoutDetails))
}

// RunFailed records a verification run that ended without a report.
func (m *Metrics) RunFailed(reason string) {
	if m != nil {
		m.RunsFailed.WithLabelValues(reason).Inc()
	}
}

// ObserveRequest records one HTTP request.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.Requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registered metrics in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ core.Recorder = (*Metrics)(nil)
