// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package metrics provides Prometheus metrics for a poll synchronization session.

All collectors are registered with the default registry through promauto and
exposed by the status server at /metrics:

	curl http://127.0.0.1:9477/metrics

# Available Metrics

REST Collaborator:
  - pollsync_api_requests_total{method, endpoint, status_code}
  - pollsync_api_request_duration_seconds{method, endpoint}

Event Stream:
  - pollsync_websocket_state: 0=closed, 1=connecting, 2=open
  - pollsync_websocket_reconnects_total
  - pollsync_websocket_messages_sent_total, _received_total, _dropped_total
  - pollsync_websocket_errors_total{error_type}

Router:
  - pollsync_router_events_total{type, action}
  - pollsync_router_decode_failures_total
  - pollsync_refetches_total{result}

Mutations:
  - pollsync_mutations_total{operation, result}
  - pollsync_mutation_duration_seconds{operation}
  - pollsync_mutation_rollbacks_total{operation}
  - pollsync_busy_polls

Store:
  - pollsync_store_polls{partition}
  - pollsync_store_writes_total{operation}

Circuit Breaker:
  - circuit_breaker_state{name}: 0=closed, 1=half-open, 2=open
  - circuit_breaker_requests_total{name, result}
  - circuit_breaker_consecutive_failures{name}
  - circuit_breaker_state_transitions_total{name, from_state, to_state}

# Thread Safety

All collectors are safe for concurrent use.
*/
package metrics
