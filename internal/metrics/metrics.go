// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ParsesTotal counts export parse attempts by platform and outcome.
	ParsesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlens_parse_total",
			Help: "Total export parse attempts",
		},
		[]string{"platform", "outcome"},
	)

	// AnalysisDuration tracks end-to-end analysis duration.
	AnalysisDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chatlens_analysis_duration_seconds",
			Help:    "End-to-end analysis duration in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	// RequestsTotal counts HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatlens_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// ReportsStoredTotal counts reports persisted to the store.
	ReportsStoredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatlens_reports_stored_total",
			Help: "Total reports persisted",
		},
	)
)

// RecordParse records one parse attempt.
func RecordParse(platform string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ParsesTotal.WithLabelValues(platform, outcome).Inc()
}

// ObserveAnalysis records a finished analysis run.
func ObserveAnalysis(seconds float64) {
	AnalysisDuration.Observe(seconds)
}

// RecordRequest records one HTTP request.
func RecordRequest(method, path, status string) {
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}
