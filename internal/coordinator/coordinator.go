// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/metrics"
	"github.com/tomtom215/pollsync/internal/models"
	"github.com/tomtom215/pollsync/internal/pollapi"
	"github.com/tomtom215/pollsync/internal/store"
	"github.com/tomtom215/pollsync/internal/validation"
)

// Notifier publishes best-effort change notifications to other clients.
// transport.Client implements it.
type Notifier interface {
	Send(event any)
}

// State is the session-level progress and error state.
type State struct {
	Creating  bool   `json:"creating"`
	Loading   bool   `json:"loading"`
	LastError string `json:"last_error,omitempty"`
}

// Coordinator runs user mutations against the poll server and keeps the
// store consistent with the outcome. It also serves as the router's target.
type Coordinator struct {
	api      pollapi.API
	store    *store.PollStore
	busy     *store.BusySet
	notifier Notifier
	viewer   models.Viewer
	logger   zerolog.Logger

	mu    sync.Mutex
	state State
}

// New creates a coordinator acting for viewer. notifier may be nil, in which
// case no change notifications are sent.
func New(api pollapi.API, polls *store.PollStore, busy *store.BusySet, notifier Notifier, viewer models.Viewer) *Coordinator {
	return &Coordinator{
		api:      api,
		store:    polls,
		busy:     busy,
		notifier: notifier,
		viewer:   viewer,
		logger:   logging.WithComponent("coordinator"),
	}
}

// Viewer returns the identity the coordinator acts for.
func (c *Coordinator) Viewer() models.Viewer {
	return c.viewer
}

// State returns a copy of the current progress and error state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// CreatePoll validates payload, creates the poll and inserts it into the store.
func (c *Coordinator) CreatePoll(ctx context.Context, payload *models.PollCreatePayload) (*models.Poll, error) {
	if !c.viewer.Authenticated() {
		metrics.RecordMutationRejected(OpCreate)
		return nil, unauthenticated(OpCreate)
	}
	if verr := validation.ValidatePollCreate(payload); verr != nil {
		metrics.RecordMutationRejected(OpCreate)
		return nil, &MutationError{
			Op:      OpCreate,
			Message: verr.Error(),
			Err:     fmt.Errorf("%w: %w", ErrInvalidPayload, verr),
		}
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	c.setCreating(true)
	defer c.setCreating(false)

	start := time.Now()
	created, err := c.api.CreatePoll(ctx, payload, c.viewer.UserID)
	metrics.RecordMutation(OpCreate, time.Since(start), err)
	if err != nil {
		return nil, c.fail(ctx, OpCreate, 0, msgCreateFailed, err)
	}

	c.store.Replace(*created)
	c.notify(created.ID)
	logging.Ctx(ctx).Info().Int64("poll_id", created.ID).Msg("Poll created")
	return created, nil
}

// Vote casts the viewer's vote and replaces the poll with the server's copy.
// A poll the store already shows as closed, or an option the cached poll does
// not have, is refused without a network call.
func (c *Coordinator) Vote(ctx context.Context, pollID, optionID int64) error {
	if !c.viewer.Authenticated() {
		metrics.RecordMutationRejected(OpVote)
		return unauthenticated(OpVote)
	}
	if poll, ok := c.store.Snapshot().ByID(pollID); ok {
		if poll.Closed() {
			metrics.RecordMutationRejected(OpVote)
			c.setError(msgPollClosed)
			return &MutationError{Op: OpVote, PollID: pollID, Message: msgPollClosed, Err: ErrPollClosed}
		}
		if _, known := poll.Option(optionID); !known {
			metrics.RecordMutationRejected(OpVote)
			c.setError(msgUnknownOption)
			return &MutationError{Op: OpVote, PollID: pollID, Message: msgUnknownOption, Err: ErrUnknownOption}
		}
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	c.busy.Add(pollID)
	defer c.busy.Remove(pollID)

	start := time.Now()
	err := c.vote(ctx, pollID, optionID)
	metrics.RecordMutation(OpVote, time.Since(start), err)
	if err != nil {
		return c.fail(ctx, OpVote, pollID, msgVoteFailed, err)
	}

	c.notify(pollID)
	logging.Ctx(ctx).Info().Int64("poll_id", pollID).Int64("option_id", optionID).Msg("Vote submitted")
	return nil
}

func (c *Coordinator) vote(ctx context.Context, pollID, optionID int64) error {
	if _, err := c.api.CastVote(ctx, pollID, optionID, c.viewer.UserID); err != nil {
		return err
	}
	return c.refetch(ctx, pollID)
}

// ToggleLike flips the viewer's like. The flipped state is shown immediately
// and replaced by the server's copy on success; on failure the poll is
// restored to exactly what it was before the call.
func (c *Coordinator) ToggleLike(ctx context.Context, pollID int64) error {
	if !c.viewer.Authenticated() {
		metrics.RecordMutationRejected(OpLike)
		return unauthenticated(OpLike)
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	c.busy.Add(pollID)
	defer c.busy.Remove(pollID)

	previous, hadPrevious := c.store.Get(pollID)
	if hadPrevious {
		c.store.Replace(likeProjection(previous))
	}

	start := time.Now()
	err := c.toggleLike(ctx, pollID)
	metrics.RecordMutation(OpLike, time.Since(start), err)
	if err != nil {
		if hadPrevious {
			c.store.Replace(previous)
			metrics.RecordRollback(OpLike)
			logging.Ctx(ctx).Debug().Int64("poll_id", pollID).Msg("Like projection rolled back")
		}
		return c.fail(ctx, OpLike, pollID, msgLikeFailed, err)
	}

	c.notify(pollID)
	return nil
}

func (c *Coordinator) toggleLike(ctx context.Context, pollID int64) error {
	resp, err := c.api.ToggleLike(ctx, pollID, c.viewer.UserID)
	if err != nil {
		return err
	}
	logging.Ctx(ctx).Debug().Int64("poll_id", pollID).Bool("liked", resp.IsLiked()).Msg("Like toggled")
	return c.refetch(ctx, pollID)
}

// likeProjection returns p with the viewer's like flipped and the like count
// adjusted, never below zero.
func likeProjection(p models.Poll) models.Poll {
	projected := p.Clone()
	if projected.UserLiked {
		projected.TotalLikes = max(0, projected.TotalLikes-1)
	} else {
		projected.TotalLikes++
	}
	projected.UserLiked = !projected.UserLiked
	return projected
}

// ClosePoll closes the poll and stores the closed entity returned by the
// server. No notification is sent; the server broadcasts poll_closed.
func (c *Coordinator) ClosePoll(ctx context.Context, pollID int64) error {
	if !c.viewer.Authenticated() {
		metrics.RecordMutationRejected(OpClose)
		return unauthenticated(OpClose)
	}

	ctx = logging.ContextWithNewCorrelationID(ctx)
	c.busy.Add(pollID)
	defer c.busy.Remove(pollID)

	start := time.Now()
	closed, err := c.api.ClosePoll(ctx, pollID, c.viewer.UserID)
	metrics.RecordMutation(OpClose, time.Since(start), err)
	if err != nil {
		return c.fail(ctx, OpClose, pollID, msgCloseFailed, err)
	}

	c.store.Replace(*closed)
	logging.Ctx(ctx).Info().Int64("poll_id", pollID).Msg("Poll closed")
	return nil
}

// Refresh reloads the full poll list for the viewer.
func (c *Coordinator) Refresh(ctx context.Context) error {
	ctx = logging.ContextWithNewCorrelationID(ctx)
	c.setLoading(true)
	defer c.setLoading(false)

	start := time.Now()
	polls, err := c.api.FetchPolls(ctx, c.viewer.UserID)
	metrics.RecordMutation(OpRefresh, time.Since(start), err)
	if err != nil {
		return c.fail(ctx, OpRefresh, 0, msgRefreshFailed, err)
	}

	c.store.ReplaceAll(polls)
	c.setError("")
	logging.Ctx(ctx).Debug().Int("polls", len(polls)).Msg("Poll list loaded")
	return nil
}

// RefreshPoll re-fetches one poll and replaces it in the store.
func (c *Coordinator) RefreshPoll(ctx context.Context, id int64) error {
	return c.refetch(ctx, id)
}

// RemovePoll drops the poll from the store and clears it from the busy set.
func (c *Coordinator) RemovePoll(id int64) {
	c.store.Remove(id)
	c.busy.Remove(id)
	c.logger.Debug().Int64("poll_id", id).Msg("Poll removed")
}

func (c *Coordinator) refetch(ctx context.Context, id int64) error {
	poll, err := c.api.FetchPoll(ctx, id, c.viewer.UserID)
	if err != nil {
		return fmt.Errorf("fetch poll %d: %w", id, err)
	}
	c.store.Replace(*poll)
	return nil
}

func (c *Coordinator) notify(pollID int64) {
	if c.notifier == nil {
		return
	}
	c.notifier.Send(models.OutboundEvent{Type: models.EventPollUpdated, PollID: pollID})
}

func (c *Coordinator) fail(ctx context.Context, op string, pollID int64, message string, err error) *MutationError {
	c.setError(message)
	logging.Ctx(ctx).Error().Err(err).Str("op", op).Int64("poll_id", pollID).Msg("Mutation failed")
	return &MutationError{Op: op, PollID: pollID, Message: message, Err: err}
}

func (c *Coordinator) setCreating(v bool) {
	c.mu.Lock()
	c.state.Creating = v
	c.mu.Unlock()
}

func (c *Coordinator) setLoading(v bool) {
	c.mu.Lock()
	c.state.Loading = v
	c.mu.Unlock()
}

func (c *Coordinator) setError(message string) {
	c.mu.Lock()
	c.state.LastError = message
	c.mu.Unlock()
}
