// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

/*
Package models defines the data structures shared across Pollsync.

Domain Models:
  - Poll, Option: entities as served by the poll server (snake_case JSON)
  - Viewer: the user a session acts for

Request/Response Models:
  - PollCreatePayload: create-poll body, validated with go-playground/validator tags
  - VoteRequest, VoteResponse: cast-vote body and created vote record
  - LikeRequest, LikeResponse: toggle-like body and either response shape
  - OutboundEvent: change notification published on the event stream

Status Models:
  - APIResponse, Metadata, APIError: envelope used by the status HTTP surface

Poll.Clone returns a deep copy; callers that keep a poll across a store write
(rollback snapshots, status responses) must clone it.
*/
package models
