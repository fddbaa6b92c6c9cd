// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package supervisor provides the suture v4 supervision tree for pollsync.

The tree has two layers under a root supervisor: the session layer, which
runs the poll session, and the API layer, which runs the status server.
Supervisor events are logged through sutureslog into the zerolog stream via
logging.NewSlogLogger.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
	    return err
	}
	tree.AddSessionService(services.NewSessionService(session))
	tree.AddAPIService(services.NewStatusServerService(server, cfg.Status.ShutdownTimeout))
	err = tree.Serve(ctx)

Restart policy follows suture: a failing service is restarted immediately
until FailureThreshold failures accumulate, after which the supervisor
backs off for FailureBackoff. Failures decay at FailureDecay per second.
*/
package supervisor
