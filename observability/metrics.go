// Package observability exposes the Prometheus metrics of the chat backend.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatsync_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	SessionsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_sessions_issued_total",
			Help: "Bearer tokens issued, by credential policy",
		},
		[]string{"policy"},
	)

	AuthenticationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatsync_authentication_failures_total",
			Help: "Rejected credential submissions and bearer tokens",
		},
		[]string{"reason"},
	)

	MessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatsync_messages_sent_total",
			Help: "Messages appended to a conversation",
		},
	)

	MessagesDeleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatsync_messages_deleted_total",
			Help: "Messages soft-deleted by their sender",
		},
	)

	// SyncBatchSize observes how many messages a fetch returned, by mode (history or since).
	SyncBatchSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatsync_sync_batch_size",
			Help:    "Number of messages returned per history or incremental fetch",
			Buckets: []float64{0, 1, 5, 10, 50, 100, 200},
		},
		[]string{"mode"},
	)
)
