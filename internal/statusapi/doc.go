// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package statusapi exposes a read-only HTTP view of a running session.

Every JSON endpoint returns the models.APIResponse envelope. The metadata
version is the store version the response was rendered from.

Routes are served by chi; /api/v1 is rate limited per client IP with
httprate. No endpoint mutates the session.
*/
package statusapi
