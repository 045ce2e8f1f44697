package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventas_http_requests_total",
			Help: "Total HTTP requests by method, route and status.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ventas_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// CacheLookups counts query cache lookups by result: hit, stale, miss.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventas_cache_lookups_total",
			Help: "Query cache lookups by result.",
		},
		[]string{"result"},
	)

	// FetchFailures counts per-item fetch failures that were absorbed by a fan-out.
	FetchFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventas_fanout_fetch_failures_total",
			Help: "Per-item fetch failures recovered inside aggregation loops.",
		},
		[]string{"source"},
	)

	ChangeNotifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ventas_change_notifications_total",
			Help: "Entity change notifications published.",
		},
		[]string{"entity"},
	)
)
