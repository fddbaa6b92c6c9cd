// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

// Package logging provides centralized zerolog-based structured logging for Pollsync.
//
// The package provides:
//   - A global zerolog logger configured once at startup
//   - JSON output for production, console output for development
//   - Correlation IDs carried in context.Context, one per mutation
//   - A slog adapter so sutureslog writes through zerolog
//
// # Quick Start
//
//	import "github.com/tomtom215/pollsync/internal/logging"
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Msg("Session starting")
//	logging.Error().Err(err).Int64("poll_id", id).Msg("Refresh failed")
//
//	ctx = logging.ContextWithNewCorrelationID(ctx)
//	logging.Ctx(ctx).Info().Msg("Like toggled")
//
// # Configuration
//
// Environment Variables (read by internal/config):
//   - LOG_LEVEL: debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false (default: false)
//
// Always terminate log chains with .Msg() or .Send(), otherwise nothing is emitted.
package logging
