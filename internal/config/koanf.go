// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
var DefaultConfigPaths = []string{
	"pollsync.yaml",
	"pollsync.yml",
	"/etc/pollsync/config.yaml",
	"/etc/pollsync/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:           "http://localhost:8000",
			Timeout:           30 * time.Second,
			RequestsPerSecond: 0, // Unlimited
			Burst:             10,
		},
		Transport: TransportConfig{
			URL:              "", // Derived from API base URL
			Path:             "/ws",
			ReconnectEnabled: true,
			ReconnectDelay:   2 * time.Second,
			HandshakeTimeout: 10 * time.Second,
			WriteTimeout:     10 * time.Second,
			PingInterval:     30 * time.Second,
		},
		Viewer: ViewerConfig{
			UserID: 0,
		},
		Breaker: BreakerConfig{
			Enabled:      true,
			MaxRequests:  3,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  10,
			FailureRatio: 0.6,
		},
		Status: StatusConfig{
			Enabled:           true,
			Addr:              "127.0.0.1:9477",
			RateLimitRequests: 100,
			RateLimitWindow:   time.Minute,
			ShutdownTimeout:   10 * time.Second,
		},
		Supervisor: SupervisorConfig{
			FailureThreshold: 5.0,
			FailureDecay:     30.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources.
//
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// API_URL -> api.base_url, WS_RECONNECT_DELAY -> transport.reconnect_delay
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first config file found, or empty string.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	"api_url":                 "api.base_url",
	"api_timeout":             "api.timeout",
	"api_requests_per_second": "api.requests_per_second",
	"api_burst":               "api.burst",

	"ws_url":               "transport.url",
	"ws_path":              "transport.path",
	"ws_reconnect_enabled": "transport.reconnect_enabled",
	"ws_reconnect_delay":   "transport.reconnect_delay",
	"ws_handshake_timeout": "transport.handshake_timeout",
	"ws_write_timeout":     "transport.write_timeout",
	"ws_ping_interval":     "transport.ping_interval",

	"pollsync_user_id":  "viewer.user_id",
	"pollsync_username": "viewer.username",

	"breaker_enabled":       "breaker.enabled",
	"breaker_max_requests":  "breaker.max_requests",
	"breaker_interval":      "breaker.interval",
	"breaker_timeout":       "breaker.timeout",
	"breaker_min_requests":  "breaker.min_requests",
	"breaker_failure_ratio": "breaker.failure_ratio",

	"status_enabled":             "status.enabled",
	"status_addr":                "status.addr",
	"status_rate_limit_requests": "status.rate_limit_requests",
	"status_rate_limit_window":   "status.rate_limit_window",
	"status_shutdown_timeout":    "status.shutdown_timeout",

	"supervisor_failure_threshold": "supervisor.failure_threshold",
	"supervisor_failure_decay":     "supervisor.failure_decay",
	"supervisor_failure_backoff":   "supervisor.failure_backoff",
	"supervisor_shutdown_timeout":  "supervisor.shutdown_timeout",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped variables return "" and are skipped so that unrelated environment
// does not leak into the configuration.
func envTransformFunc(key string) string {
	if mapped, ok := envMappings[strings.ToLower(key)]; ok {
		return mapped
	}
	return ""
}
