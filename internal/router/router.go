// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package router

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/metrics"
	"github.com/tomtom215/pollsync/internal/models"
)

// Target receives routed events. The mutation coordinator implements it.
type Target interface {
	// RemovePoll drops the poll from the store and the busy set.
	RemovePoll(id int64)
	// RefreshPoll re-fetches the poll from the server and replaces it in the store.
	RefreshPoll(ctx context.Context, id int64) error
}

// Action is what the router did with a frame.
type Action int

const (
	// ActionDiscard: the frame could not be decoded.
	ActionDiscard Action = iota
	// ActionIgnore: decoded but carries no poll id (heartbeat and the like).
	ActionIgnore
	// ActionRemove: poll_deleted; removed locally without a fetch.
	ActionRemove
	// ActionRefresh: an authoritative re-fetch was started.
	ActionRefresh
)

// String returns the action name used in logs and metrics.
func (a Action) String() string {
	switch a {
	case ActionDiscard:
		return "discard"
	case ActionIgnore:
		return "ignore"
	case ActionRemove:
		return "remove"
	case ActionRefresh:
		return "refresh"
	default:
		return "unknown"
	}
}

// Router decodes inbound frames and dispatches them to a Target.
//
// Pushed field values are never applied to the store: any event about a poll
// other than a deletion triggers a full re-fetch, so the cache cannot drift
// from server-computed aggregates however many events were missed.
type Router struct {
	target Target
	logger zerolog.Logger
	wg     sync.WaitGroup
}

// New creates a router dispatching to target.
func New(target Target) *Router {
	return &Router{
		target: target,
		logger: logging.WithComponent("router"),
	}
}

// Handler adapts Route to a transport frame handler bound to ctx.
func (r *Router) Handler(ctx context.Context) func([]byte) {
	return func(raw []byte) {
		r.Route(ctx, raw)
	}
}

// Route decodes one frame and dispatches it. It never blocks on the network:
// re-fetches run in their own goroutines and their failures are logged.
//
// Dispatch precedence:
//  1. poll_deleted with an id: remove locally
//  2. poll_closed with an id: re-fetch
//  3. any other type with an id: re-fetch
//  4. no resolvable id: ignore
func (r *Router) Route(ctx context.Context, raw []byte) Action {
	event, err := Decode(raw)
	if err != nil {
		metrics.RouterDecodeFailures.Inc()
		r.logger.Warn().Err(err).Int("bytes", len(raw)).Msg("Discarding undecodable frame")
		return ActionDiscard
	}

	id, ok := event.PollID()
	action := ActionIgnore
	switch {
	case !ok:
		r.logger.Debug().Str("type", event.Type).Msg("Ignoring event without poll id")
	case event.Type == models.EventPollDeleted:
		action = ActionRemove
		r.target.RemovePoll(id)
	default:
		action = ActionRefresh
		r.refresh(ctx, event.Type, id)
	}

	metrics.RecordRouterEvent(event.Type, action.String())
	return action
}

func (r *Router) refresh(ctx context.Context, eventType string, id int64) {
	ctx = logging.ContextWithNewCorrelationID(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		err := r.target.RefreshPoll(ctx, id)
		metrics.RecordRefetch(err)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).Str("type", eventType).Int64("poll_id", id).Msg("Failed to sync poll")
			return
		}
		logging.Ctx(ctx).Debug().Str("type", eventType).Int64("poll_id", id).Msg("Poll synced")
	}()
}

// Wait blocks until every re-fetch started so far has finished.
func (r *Router) Wait() {
	r.wg.Wait()
}
