// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package models

import (
	"time"
)

// APIResponse is the envelope returned by every status endpoint.
//
// Status field values:
//   - "success": Request completed successfully, see Data field
//   - "error": Request failed, see Error field for details
//
// Example successful response:
//
//	{
//	  "status": "success",
//	  "data": {"total_votes": 12, "active_count": 3},
//	  "metadata": {"timestamp": "2026-03-01T12:00:00Z", "version": 14}
//	}
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata describes the cache state a response was rendered from.
//
// Version is the store's change counter; two responses with the same Version
// were rendered from the same snapshot.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	Version   uint64    `json:"version,omitempty"`
}

// APIError is the error body of an unsuccessful status response.
type APIError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}
