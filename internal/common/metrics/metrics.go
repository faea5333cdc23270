// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RegistryOperationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_registry_operations_completed_total",
			Help: "Total number of registry operations that succeeded",
		},
		[]string{"operation"},
	)

	RegistryOperationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_registry_operations_failed_total",
			Help: "Total number of registry operations rejected or failed",
		},
		[]string{"operation", "error_code"},
	)

	ActivityParticipants = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "activities_participants",
			Help: "Current number of participants per activity",
		},
		[]string{"activity"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "activities_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_events_published_total",
			Help: "Total number of registration events delivered per sink",
		},
		[]string{"sink"},
	)

	EventsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "activities_events_failed_total",
			Help: "Total number of registration event deliveries that failed per sink",
		},
		[]string{"sink"},
	)

	EventsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "activities_events_dropped_total",
			Help: "Total number of registration events dropped because the queue was full",
		},
	)

	EventQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "activities_event_queue_depth",
			Help: "Number of registration events waiting for dispatch",
		},
	)
)
