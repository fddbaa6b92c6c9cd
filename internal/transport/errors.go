// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package transport

import "fmt"

// DialError describes a failed connection attempt.
type DialError struct {
	// Status is the HTTP status of a rejected handshake, zero if none was received.
	Status int
	Err    error
}

func (e *DialError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("websocket dial failed (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("websocket dial failed: %v", e.Err)
}

func (e *DialError) Unwrap() error {
	return e.Err
}
