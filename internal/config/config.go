// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package config

import (
	"strings"
	"time"
)

// Config holds all session configuration loaded from defaults, an optional
// YAML file, and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (pollsync.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Config is read once at process start and is immutable afterwards; there is
// no runtime reconfiguration.
type Config struct {
	API        APIConfig        `koanf:"api"`
	Transport  TransportConfig  `koanf:"transport"`
	Viewer     ViewerConfig     `koanf:"viewer"`
	Breaker    BreakerConfig    `koanf:"breaker"`
	Status     StatusConfig     `koanf:"status"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
	Logging    LoggingConfig    `koanf:"logging"`
}

// APIConfig holds settings for the REST collaborator.
//
// Environment Variables:
//   - API_URL: Base HTTP URL of the poll server (default: http://localhost:8000)
//   - API_TIMEOUT: Per-request timeout (default: 30s)
//   - API_REQUESTS_PER_SECOND: Client-side request pacing, 0 disables (default: 0)
//   - API_BURST: Burst allowance for request pacing (default: 10)
type APIConfig struct {
	BaseURL           string        `koanf:"base_url"`
	Timeout           time.Duration `koanf:"timeout"`
	RequestsPerSecond float64       `koanf:"requests_per_second"`
	Burst             int           `koanf:"burst"`
}

// TransportConfig holds settings for the persistent WebSocket connection.
//
// Environment Variables:
//   - WS_URL: Explicit WebSocket base URL; derived from API_URL when empty
//   - WS_PATH: Fixed endpoint path (default: /ws)
//   - WS_RECONNECT_ENABLED: Reconnect after a drop (default: true)
//   - WS_RECONNECT_DELAY: Fixed delay before each reconnect attempt (default: 2s)
//   - WS_HANDSHAKE_TIMEOUT: Dial handshake timeout (default: 10s)
//   - WS_WRITE_TIMEOUT: Per-frame write deadline (default: 10s)
//   - WS_PING_INTERVAL: Keep-alive ping interval, 0 disables (default: 30s)
type TransportConfig struct {
	URL              string        `koanf:"url"`
	Path             string        `koanf:"path"`
	ReconnectEnabled bool          `koanf:"reconnect_enabled"`
	ReconnectDelay   time.Duration `koanf:"reconnect_delay"`
	HandshakeTimeout time.Duration `koanf:"handshake_timeout"`
	WriteTimeout     time.Duration `koanf:"write_timeout"`
	PingInterval     time.Duration `koanf:"ping_interval"`
}

// ViewerConfig identifies the user on whose behalf the session runs.
// A zero UserID means an anonymous session: polls can be browsed but every
// mutation is rejected before any network call.
//
// Environment Variables:
//   - POLLSYNC_USER_ID: Viewer user id (default: 0, anonymous)
//   - POLLSYNC_USERNAME: Viewer display name (optional)
type ViewerConfig struct {
	UserID   int64  `koanf:"user_id"`
	Username string `koanf:"username"`
}

// BreakerConfig tunes the circuit breaker wrapping the REST client.
//
// Environment Variables:
//   - BREAKER_ENABLED (default: true)
//   - BREAKER_MAX_REQUESTS: Requests allowed in half-open state (default: 3)
//   - BREAKER_INTERVAL: Closed-state counting window (default: 1m)
//   - BREAKER_TIMEOUT: Open-state duration before half-open (default: 30s)
//   - BREAKER_MIN_REQUESTS: Requests needed before tripping (default: 10)
//   - BREAKER_FAILURE_RATIO: Failure ratio that trips the breaker (default: 0.6)
type BreakerConfig struct {
	Enabled      bool          `koanf:"enabled"`
	MaxRequests  uint32        `koanf:"max_requests"`
	Interval     time.Duration `koanf:"interval"`
	Timeout      time.Duration `koanf:"timeout"`
	MinRequests  uint32        `koanf:"min_requests"`
	FailureRatio float64       `koanf:"failure_ratio"`
}

// StatusConfig holds settings for the read-only status HTTP surface.
//
// Environment Variables:
//   - STATUS_ENABLED (default: true)
//   - STATUS_ADDR: Listen address (default: 127.0.0.1:9477)
//   - STATUS_RATE_LIMIT_REQUESTS (default: 100)
//   - STATUS_RATE_LIMIT_WINDOW (default: 1m)
type StatusConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Addr              string        `koanf:"addr"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// SupervisorConfig mirrors suture's failure handling knobs.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging settings passed to logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from all sources and validates it.
func Load() (*Config, error) {
	return LoadWithKoanf()
}

// APIBaseURL returns the REST base URL without a trailing slash.
func (c *Config) APIBaseURL() string {
	return strings.TrimSuffix(c.API.BaseURL, "/")
}

// WebSocketBaseURL returns the explicit WebSocket URL if configured, otherwise
// the API base URL with its scheme translated (https -> wss, http -> ws).
func (c *Config) WebSocketBaseURL() string {
	if c.Transport.URL != "" {
		return strings.TrimSuffix(c.Transport.URL, "/")
	}
	return DeriveWebSocketURL(c.APIBaseURL())
}

// WebSocketEndpoint returns the full transport endpoint (base URL + fixed path).
func (c *Config) WebSocketEndpoint() string {
	path := c.Transport.Path
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.WebSocketBaseURL() + path
}

// DeriveWebSocketURL translates an HTTP(S) base URL into its WebSocket form.
// URLs with any other scheme are returned unchanged.
func DeriveWebSocketURL(httpURL string) string {
	httpURL = strings.TrimSuffix(httpURL, "/")
	switch {
	case strings.HasPrefix(httpURL, "https://"):
		return "wss://" + strings.TrimPrefix(httpURL, "https://")
	case strings.HasPrefix(httpURL, "http://"):
		return "ws://" + strings.TrimPrefix(httpURL, "http://")
	default:
		return httpURL
	}
}
