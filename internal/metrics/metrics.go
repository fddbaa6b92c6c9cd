// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus instrumentation for a poll synchronization session:
// - REST collaborator latency and outcomes
// - Event stream connection lifecycle
// - Router dispatch decisions
// - Mutation outcomes, rollbacks and busy polls
// - Local cache size
// - Circuit breaker state

var (
	// REST Collaborator Metrics
	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pollsync_api_request_duration_seconds",
			Help:    "Duration of requests to the poll server in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_api_requests_total",
			Help: "Total number of requests to the poll server",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	// Status Surface Metrics
	StatusRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_status_requests_total",
			Help: "Total number of requests served by the status HTTP surface",
		},
		[]string{"route", "status_code"},
	)

	// WebSocket Metrics
	WSConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pollsync_websocket_state",
			Help: "Event stream connection state (0=closed, 1=connecting, 2=open)",
		},
	)

	WSReconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollsync_websocket_reconnects_total",
			Help: "Total number of scheduled reconnection attempts",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollsync_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollsync_websocket_messages_dropped_total",
			Help: "Total number of outbound messages dropped because the connection was not open",
		},
	)

	WSMessagesReceived = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollsync_websocket_messages_received_total",
			Help: "Total number of WebSocket messages received",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"}, // dial, read, write, marshal
	)

	// Router Metrics
	RouterEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_router_events_total",
			Help: "Total number of inbound events by type and dispatch action",
		},
		[]string{"type", "action"}, // action: remove, refresh, ignore
	)

	RouterDecodeFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pollsync_router_decode_failures_total",
			Help: "Total number of inbound frames that could not be decoded",
		},
	)

	RefetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_refetches_total",
			Help: "Total number of authoritative single-poll re-fetches",
		},
		[]string{"result"}, // success, error
	)

	// Mutation Metrics
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_mutations_total",
			Help: "Total number of user mutations by operation and result",
		},
		[]string{"operation", "result"}, // result: success, error, rejected
	)

	MutationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pollsync_mutation_duration_seconds",
			Help:    "Duration of user mutations including the authoritative re-fetch",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	MutationRollbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_mutation_rollbacks_total",
			Help: "Total number of optimistic projections restored after a failed mutation",
		},
		[]string{"operation"},
	)

	BusyPolls = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pollsync_busy_polls",
			Help: "Current number of polls with an in-flight user mutation",
		},
	)

	// Store Metrics
	StorePolls = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pollsync_store_polls",
			Help: "Current number of cached polls by partition",
		},
		[]string{"partition"}, // active, closed
	)

	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pollsync_store_writes_total",
			Help: "Total number of structural store writes",
		},
		[]string{"operation"}, // replace, replace_all, remove, discarded
	)

	// Circuit Breaker Metrics
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
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordAPIRequest records one request to the poll server.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordStatusRequest records one request served by the status surface.
func RecordStatusRequest(route string, statusCode int) {
	StatusRequestsTotal.WithLabelValues(route, strconv.Itoa(statusCode)).Inc()
}

// RecordMutation records the outcome of a user mutation.
func RecordMutation(operation string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	MutationsTotal.WithLabelValues(operation, result).Inc()
	MutationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordMutationRejected records a mutation refused before any network call.
func RecordMutationRejected(operation string) {
	MutationsTotal.WithLabelValues(operation, "rejected").Inc()
}

// RecordRollback records a restored optimistic projection.
func RecordRollback(operation string) {
	MutationRollbacks.WithLabelValues(operation).Inc()
}

// RecordRefetch records the outcome of a single-poll re-fetch.
func RecordRefetch(err error) {
	if err != nil {
		RefetchesTotal.WithLabelValues("error").Inc()
		return
	}
	RefetchesTotal.WithLabelValues("success").Inc()
}

// RecordRouterEvent records how an inbound event was dispatched.
func RecordRouterEvent(eventType, action string) {
	if eventType == "" {
		eventType = "unknown"
	}
	RouterEvents.WithLabelValues(eventType, action).Inc()
}

// UpdateStoreGauges sets the cached poll gauges.
func UpdateStoreGauges(active, closed int) {
	StorePolls.WithLabelValues("active").Set(float64(active))
	StorePolls.WithLabelValues("closed").Set(float64(closed))
}

// RecordStoreWrite records a structural store write.
func RecordStoreWrite(operation string) {
	StoreWrites.WithLabelValues(operation).Inc()
}

// SetBusyPolls sets the busy poll gauge.
func SetBusyPolls(n int) {
	BusyPolls.Set(float64(n))
}
