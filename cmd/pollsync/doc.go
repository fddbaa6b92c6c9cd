// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

// Package main runs a pollsync session for one viewer.
//
// The process loads configuration, opens a session against the poll server
// (REST plus the /ws event stream) and keeps a live local cache of every
// poll. Each change to the cache is logged with the current aggregate
// figures. A read-only status server exposes the cache, the busy set and
// Prometheus metrics.
//
// # Components
//
// The supervisor tree runs two layers:
//
//  1. session-layer: the poll session (initial load, event stream, re-fetches)
//  2. api-layer: the status HTTP server (optional)
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Environment variables, optionally from a .env file
//   - Config file (pollsync.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// Common variables:
//   - API_URL: poll server base URL (default: http://localhost:8000)
//   - WS_URL: event stream base URL, derived from API_URL when unset
//   - POLLSYNC_USER_ID: viewer id; 0 runs anonymously
//   - STATUS_ADDR: status server address (default: 127.0.0.1:9477)
//   - LOG_LEVEL, LOG_FORMAT
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The status server drains
// within STATUS_SHUTDOWN_TIMEOUT and the session closes its event stream
// before the store stops accepting writes.
//
// # Example Usage
//
//	export API_URL=https://polls.example.com
//	export POLLSYNC_USER_ID=42
//	./pollsync
package main
