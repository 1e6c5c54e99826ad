package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	VisitorsSwept = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visitors_swept_total",
			Help: "Expired visitor credentials removed by the sweeper.",
		},
	)

	VisitorSweepErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "visitor_sweep_errors_total",
			Help: "Failed sweeper cycles.",
		},
	)

	GeocoderRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geocoder_requests_total",
			Help: "Reverse geocoding lookups by result.",
		},
		[]string{"result"}, // hit | miss | error
	)

	ProjectsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "projects_ingested_total",
			Help: "Project create/update pipeline runs by outcome.",
		},
		[]string{"operation", "outcome"},
	)
)
