// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package services provides suture.Service wrappers for pollsync components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error pattern and names itself through fmt.Stringer so that
supervisor events identify it.

SessionService:
  - Runs engine.Session until ctx is cancelled
  - A closed session returns suture.ErrDoNotRestart

StatusServerService:
  - Runs the status *http.Server
  - Shuts down gracefully within a configurable timeout
  - Listener failures are returned for restart
*/
package services
