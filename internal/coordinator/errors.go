// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package coordinator

import (
	"errors"
	"fmt"
)

// Precondition errors. They are returned wrapped in a *MutationError and
// match with errors.Is.
var (
	// ErrUnauthenticated is returned when the session has no known viewer.
	ErrUnauthenticated = errors.New("viewer is not authenticated")

	// ErrPollClosed is returned when voting on a poll the store shows as closed.
	ErrPollClosed = errors.New("poll is closed")

	// ErrUnknownOption is returned when voting for an option the cached poll
	// does not have.
	ErrUnknownOption = errors.New("option is not part of the poll")

	// ErrInvalidPayload is returned when a create payload fails validation.
	ErrInvalidPayload = errors.New("invalid poll payload")
)

// Operation names used in errors, logs and metrics.
const (
	OpCreate  = "create"
	OpVote    = "vote"
	OpLike    = "like"
	OpClose   = "close"
	OpRefresh = "refresh"
)

// User-visible failure messages.
const (
	msgCreateFailed  = "Unable to create poll. Please try again."
	msgVoteFailed    = "Unable to submit vote. Please try again."
	msgLikeFailed    = "Unable to update like. Please try again."
	msgCloseFailed   = "Unable to close poll. Please try again."
	msgRefreshFailed = "Failed to load polls"
	msgPollClosed    = "This poll has already closed."
	msgUnknownOption = "That option is not part of this poll."
)

var loginMessages = map[string]string{
	OpCreate: "You must be logged in to create a poll",
	OpVote:   "You must be logged in to vote",
	OpLike:   "You must be logged in to like a poll",
	OpClose:  "You must be logged in to manage polls",
}

// MutationError describes a failed coordinator operation.
type MutationError struct {
	// Op is the operation name (create, vote, like, close, refresh).
	Op string
	// PollID is the poll the operation targeted, zero for create and refresh.
	PollID int64
	// Message is the human-readable text to present to the user.
	Message string
	// Err is the underlying cause: a precondition sentinel, a validation
	// error, a *pollapi.APIError or a transport error.
	Err error
}

// Error implements the error interface.
func (e *MutationError) Error() string {
	if e.PollID != 0 {
		return fmt.Sprintf("%s poll %d: %v", e.Op, e.PollID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *MutationError) Unwrap() error {
	return e.Err
}

func unauthenticated(op string) *MutationError {
	return &MutationError{Op: op, Message: loginMessages[op], Err: ErrUnauthenticated}
}
