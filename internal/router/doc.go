// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

// Package router turns inbound event stream frames into store actions.
//
// Frames arrive either flat, {"type":"poll_updated","poll_id":7}, or wrapped
// by a shared broadcaster, {"message":"{\"type\":...}"}. Decode unwraps one
// level of string-encoded JSON. Deletions remove the poll locally; every
// other event naming a poll triggers an authoritative re-fetch; frames
// without a poll id (heartbeats) are ignored; undecodable frames are logged
// and discarded.
package router
