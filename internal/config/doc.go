// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package config provides centralized configuration management for Pollsync.

Configuration is layered with Koanf v2:

 1. Defaults: built-in values for every setting (defaultConfig)
 2. Config File: optional YAML file (pollsync.yaml, /etc/pollsync/config.yaml,
    or the path named by CONFIG_PATH)
 3. Environment Variables: override any setting

# Configuration Structure

  - APIConfig: REST base URL, request timeout, client-side pacing
  - TransportConfig: WebSocket endpoint, fixed reconnect delay, keep-alive
  - ViewerConfig: the user the session acts for (0 = anonymous)
  - BreakerConfig: circuit breaker around the REST client
  - StatusConfig: read-only status HTTP server
  - SupervisorConfig: suture failure handling
  - LoggingConfig: zerolog level and output format

# Endpoint Derivation

The WebSocket base URL is derived from API_URL unless WS_URL is set:
https:// becomes wss:// and http:// becomes ws://. The transport endpoint is
the base URL followed by the fixed path (default /ws).

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	endpoint := cfg.WebSocketEndpoint() // ws://localhost:8000/ws

# Thread Safety

Config is loaded once at startup and treated as read-only afterwards.
*/
package config
