// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package pollapi is the client for the poll server REST API.

Endpoints (paths keep the server's trailing slashes):

	GET  /polls/?user_id=          list polls for a viewer (parameter omitted when anonymous)
	GET  /polls/{id}?user_id=      one poll
	POST /polls/?creator_id=       create
	POST /votes/?user_id=          {"poll_id", "option_id"}
	POST /likes/?user_id=          {"poll_id"} toggles the like
	POST /polls/{id}/close?user_id=

Any non-2xx response becomes an *APIError carrying the status, status text and
the body (parsed JSON, or raw text).

CircuitBreakerClient wraps any API with sony/gobreaker. Only transport
failures and 5xx responses count toward tripping. Client and
CircuitBreakerClient both satisfy API, which is what the coordinator consumes.
*/
package pollapi
