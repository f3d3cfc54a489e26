package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SchemaBuildDuration tracks schema assembly time by validation mode
	SchemaBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subgraph_schema_build_duration_seconds",
			Help:    "Schema assembly duration in seconds",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
		[]string{"mode"},
	)

	// QueryValidations counts validated query documents by result
	QueryValidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraph_query_validations_total",
			Help: "Total number of query documents validated against the schema",
		},
		[]string{"result"},
	)

	// ValidationErrors counts individual validation errors by rule
	ValidationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraph_validation_errors_total",
			Help: "Total number of validation errors reported",
		},
		[]string{"rule"},
	)

	// HTTPRequests counts served requests by route and status code
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "subgraph_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"route", "status"},
	)

	// HTTPDuration tracks request handling time by route
	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "subgraph_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)
