// Radiograph - APRS-IS Packet Ingestion and Real-Time Distribution
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/radiograph

// Package metrics declares the Prometheus instruments for the packet
// pipeline, the store, the websocket hub and the query API. Everything
// registers on the default registry via promauto and is served by
// promhttp on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Stream client metrics
	StreamConnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_stream_connects_total",
			Help: "Total number of APRS-IS connection attempts that completed the login write",
		},
	)

	StreamDisconnects = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aprs_stream_disconnects_total",
			Help: "Total number of APRS-IS disconnections",
		},
		[]string{"reason"}, // "eof", "error", "cancelled", "manual"
	)

	StreamLoginVerified = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aprs_stream_login_verified",
			Help: "Whether the current APRS-IS login is verified (1) or receive-only (0)",
		},
	)

	StreamLinesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_stream_lines_received_total",
			Help: "Total number of non-blank lines read from the APRS-IS feed",
		},
	)

	// Ingestion pipeline metrics
	PacketsReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_packets_received_total",
			Help: "Total number of TNC2 packet lines handed to the parser",
		},
	)

	PacketsParsed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "aprs_packets_parsed_total",
			Help: "Total number of successfully parsed packets by type",
		},
		[]string{"type"},
	)

	PacketsParseFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_packets_parse_failed_total",
			Help: "Total number of lines rejected at the frame level",
		},
	)

	PacketsDeduplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_packets_deduplicated_total",
			Help: "Total number of packets dropped by the dedup filter",
		},
	)

	PacketsPersisted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_packets_persisted_total",
			Help: "Total number of packets written to the store",
		},
	)

	PacketsBroadcast = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_packets_broadcast_total",
			Help: "Total number of packets handed to the websocket hub",
		},
	)

	QueueDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "aprs_queue_dropped_total",
			Help: "Total number of packets shed by drop-oldest on queue overflow",
		},
	)

	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "aprs_queue_depth",
			Help: "Current depth of the bounded ingest queue",
		},
	)

	ProcessingDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "aprs_packet_processing_duration_seconds",
			Help:    "Duration of per-packet worker processing in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Database metrics
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "duckdb_query_duration_seconds",
			Help:    "Duration of DuckDB queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	DBQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "duckdb_query_errors_total",
			Help: "Total number of DuckDB query errors",
		},
		[]string{"operation"},
	)

	// Cache metrics
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_cache_hits_total",
			Help: "Total number of dedup cache hits",
		},
	)

	CacheSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_cache_entries",
			Help: "Current number of dedup fingerprints cached",
		},
	)

	// WebSocket hub metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active websocket subscribers",
		},
	)

	WSSubscriptions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_subscriptions",
			Help: "Current number of group memberships across all subscribers",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of messages delivered to subscribers",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_received_total",
			Help: "Total number of subscription commands received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of websocket errors",
		},
		[]string{"error_type"},
	)

	// API metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// Circuit breaker metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breakers",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)
)

// RecordDBQuery records one store operation.
func RecordDBQuery(operation string, duration time.Duration, err error) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records one handled API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordParsed records one parsed packet by its type name.
func RecordParsed(packetType string) {
	PacketsParsed.WithLabelValues(packetType).Inc()
}

// RecordBreakerResult records one circuit-breaker outcome.
func RecordBreakerResult(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}
