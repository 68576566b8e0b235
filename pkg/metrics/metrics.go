// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"method", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dotfile_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method"},
	)
)

// Filing metrics
var (
	FilingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_filings_total",
			Help: "Filing requests by terminal state",
		},
		[]string{"state"},
	)

	ClassificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_classifications_total",
			Help: "Classification results by source and destination category",
		},
		[]string{"source", "category"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dotfile_stage_duration_seconds",
			Help:    "Duration of each filing stage in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 15, 30},
		},
		[]string{"stage"},
	)

	FileMovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dotfile_file_moves_total",
			Help: "Attachment moves and artifact writes by result",
		},
		[]string{"kind", "result"},
	)

	RoundConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dotfile_round_conflicts_total",
			Help: "Round allocations that lost a compare-and-swap race",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
