// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package coordinator executes user mutations against the poll server.

Every operation requires an authenticated viewer and is refused with
ErrUnauthenticated before any network call otherwise.

Operations:

  - CreatePoll: validate, create, insert, notify. Tracks State.Creating.
  - Vote: refused with ErrPollClosed when the store shows the poll closed.
    Otherwise cast, re-fetch, replace, notify.
  - ToggleLike: write a flipped projection, toggle, re-fetch. On failure the
    exact pre-call copy of the poll is written back.
  - ClosePoll: close and store the returned entity.
  - Refresh: reload the whole list. Tracks State.Loading.

Vote, ToggleLike and ClosePoll mark the poll busy for the duration of the
network round trip and clear it on every path. The busy set is advisory: a
second call for a busy poll is not rejected.

Failures are returned as *MutationError whose Message is suitable for
display; the same message is recorded in State.LastError.
*/
package coordinator
