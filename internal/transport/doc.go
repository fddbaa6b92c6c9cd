// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package transport maintains the persistent WebSocket connection to the poll
server's event stream (ws(s)://<base>/ws).

Lifecycle:

	closed -> connecting -> open -> closed -> (fixed delay) -> connecting -> ...

Every close (read error, remote close, failed handshake) schedules exactly
one new attempt after Config.ReconnectDelay. The delay never grows and there
is no attempt limit. Close deregisters handlers, cancels a pending attempt and
closes the socket; after it returns no handler fires.

Send writes one JSON text frame when the connection is open and silently
drops the event otherwise. Nothing is queued for later delivery.

	client := transport.New(transport.DefaultConfig("ws://localhost:8000/ws"))
	client.OnMessage(router.Handler(ctx))
	client.Connect(ctx)
	defer client.Close()
*/
package transport
