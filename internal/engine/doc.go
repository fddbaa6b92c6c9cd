// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package engine assembles a poll synchronization session.

A Session owns one poll store, one busy set, one mutation coordinator, one
message router and one event stream connection, all bound to a single viewer:

	REST client ── circuit breaker ──┐
	                                 ├─ coordinator ── store ── subscribers
	event stream ── router ──────────┘

Inbound frames are routed to the coordinator, which re-fetches or removes the
affected poll. Successful mutations are announced on the same stream.

Usage:

	session := engine.NewSession(cfg)
	session.Store().Subscribe(func(snap *store.Snapshot) { ... })
	err := session.Run(ctx)
*/
package engine
