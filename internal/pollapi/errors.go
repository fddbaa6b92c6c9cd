// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package pollapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// APIError is returned for any non-2xx response from the poll server.
type APIError struct {
	// Status is the HTTP status code.
	Status int
	// Message is the HTTP status text.
	Message string
	// Details is the parsed JSON body when the body is JSON, otherwise the raw text.
	Details interface{}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if detail := e.Detail(); detail != "" {
		return fmt.Sprintf("poll server returned %d %s: %s", e.Status, e.Message, detail)
	}
	return fmt.Sprintf("poll server returned %d %s", e.Status, e.Message)
}

// Detail returns the server's explanation, if any. The poll server reports
// errors as {"detail": "..."}; plain-text bodies are returned as-is.
func (e *APIError) Detail() string {
	switch d := e.Details.(type) {
	case string:
		return d
	case map[string]interface{}:
		if s, ok := d["detail"].(string); ok {
			return s
		}
	}
	return ""
}

// isBreakerSuccess reports whether err should count as a success for the
// circuit breaker. Client errors (4xx) and caller cancellation say nothing
// about server health.
func isBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status < http.StatusInternalServerError
	}
	return false
}
