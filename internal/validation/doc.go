// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

// Package validation provides struct validation using go-playground/validator v10.
//
// The package wraps the validator library with a thread-safe singleton
// instance, a notblank custom tag, JSON field naming and human-readable
// messages.
//
// # Usage
//
// The mutation coordinator validates create-poll payloads before any network
// call:
//
//	if verr := validation.ValidatePollCreate(&payload); verr != nil {
//	    return nil, fmt.Errorf("%w: %w", coordinator.ErrInvalidPayload, verr)
//	}
//
// # Error Messages
//
//	title is required
//	options must be at least 2 items
//	options[1] must not be blank
//	description must be at most 1000 characters
//
// # Thread Safety
//
// GetValidator initializes the validator once with sync.Once; the instance
// caches struct metadata and is safe for concurrent use.
package validation
