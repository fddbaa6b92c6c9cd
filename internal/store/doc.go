// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package store holds the authoritative client-side poll cache and the busy set.

PollStore keeps polls newest first and publishes an immutable Snapshot after
every structural change. Snapshot.Active and Snapshot.Closed always partition
Snapshot.All. Writes are whole-entity: Replace, ReplaceAll and Remove. After
Close the store is read-only and late writes are dropped.

BusySet is the set of poll ids with a user mutation in flight.

Both types are safe for concurrent use.
*/
package store
