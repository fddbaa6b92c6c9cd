// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package config

import (
	"fmt"
	"strings"
)

// Validate checks that all configuration values are usable.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateAPI,
		c.validateTransport,
		c.validateViewer,
		c.validateBreaker,
		c.validateStatus,
		c.validateLogging,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_URL is required")
	}
	if err := validateHTTPURL(c.API.BaseURL, "API_URL"); err != nil {
		return err
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("API_TIMEOUT must be positive, got: %v", c.API.Timeout)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("API_REQUESTS_PER_SECOND must be >= 0, got: %v", c.API.RequestsPerSecond)
	}
	if c.API.RequestsPerSecond > 0 && c.API.Burst < 1 {
		return fmt.Errorf("API_BURST must be at least 1 when request pacing is enabled, got: %d", c.API.Burst)
	}
	return nil
}

func (c *Config) validateTransport() error {
	if c.Transport.URL != "" {
		if err := validateWebSocketURL(c.Transport.URL, "WS_URL"); err != nil {
			return err
		}
	} else if err := validateWebSocketURL(c.WebSocketBaseURL(), "derived WebSocket URL"); err != nil {
		return err
	}
	if c.Transport.ReconnectEnabled && c.Transport.ReconnectDelay <= 0 {
		return fmt.Errorf("WS_RECONNECT_DELAY must be positive when reconnect is enabled, got: %v", c.Transport.ReconnectDelay)
	}
	if c.Transport.HandshakeTimeout <= 0 {
		return fmt.Errorf("WS_HANDSHAKE_TIMEOUT must be positive, got: %v", c.Transport.HandshakeTimeout)
	}
	if c.Transport.WriteTimeout <= 0 {
		return fmt.Errorf("WS_WRITE_TIMEOUT must be positive, got: %v", c.Transport.WriteTimeout)
	}
	if c.Transport.PingInterval < 0 {
		return fmt.Errorf("WS_PING_INTERVAL must be >= 0, got: %v", c.Transport.PingInterval)
	}
	return nil
}

func (c *Config) validateViewer() error {
	if c.Viewer.UserID < 0 {
		return fmt.Errorf("POLLSYNC_USER_ID must be >= 0, got: %d", c.Viewer.UserID)
	}
	return nil
}

func (c *Config) validateBreaker() error {
	if !c.Breaker.Enabled {
		return nil
	}
	if c.Breaker.FailureRatio <= 0 || c.Breaker.FailureRatio > 1 {
		return fmt.Errorf("BREAKER_FAILURE_RATIO must be in (0, 1], got: %v", c.Breaker.FailureRatio)
	}
	if c.Breaker.Timeout <= 0 {
		return fmt.Errorf("BREAKER_TIMEOUT must be positive, got: %v", c.Breaker.Timeout)
	}
	return nil
}

func (c *Config) validateStatus() error {
	if !c.Status.Enabled {
		return nil
	}
	if c.Status.Addr == "" {
		return fmt.Errorf("STATUS_ADDR is required when the status server is enabled")
	}
	if c.Status.RateLimitRequests < 1 {
		return fmt.Errorf("STATUS_RATE_LIMIT_REQUESTS must be at least 1, got: %d", c.Status.RateLimitRequests)
	}
	if c.Status.RateLimitWindow <= 0 {
		return fmt.Errorf("STATUS_RATE_LIMIT_WINDOW must be positive, got: %v", c.Status.RateLimitWindow)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got: %s", c.Logging.Format)
	}
}
