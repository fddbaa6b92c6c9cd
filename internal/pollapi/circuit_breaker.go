// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package pollapi

import (
	"context"
	"errors"
	"fmt"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/pollsync/internal/config"
	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/metrics"
	"github.com/tomtom215/pollsync/internal/models"
)

// BreakerName labels the poll server breaker in logs and metrics.
const BreakerName = "poll-api"

// Ensure CircuitBreakerClient implements API
var _ API = (*CircuitBreakerClient)(nil)

// CircuitBreakerClient wraps an API with the circuit breaker pattern so an
// unavailable poll server fails fast instead of stacking up timeouts.
//
// Only transport failures and 5xx responses count against the breaker; a 4xx
// (unknown poll, duplicate vote) is the server answering correctly.
type CircuitBreakerClient struct {
	client API
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string
}

// NewCircuitBreakerClient wraps client with a breaker tuned by cfg.
func NewCircuitBreakerClient(client API, cfg *config.BreakerConfig) *CircuitBreakerClient {
	name := BreakerName

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0) // 0 = closed
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)

	minRequests := cfg.MinRequests
	failureRatio := cfg.FailureRatio

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}

			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := ratio >= failureRatio

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", ratio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		IsSuccessful: isBreakerSuccess,

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("breaker", name).Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()

			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   name,
	}
}

// State returns the current breaker state as a string.
func (cbc *CircuitBreakerClient) State() string {
	return stateToString(cbc.cb.State())
}

// execute wraps an API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	if err != nil {
		switch {
		case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		case isBreakerSuccess(err):
			// Answered by the server; the breaker counted it as a success.
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)
		default:
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
			counts := cbc.cb.Counts()
			metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(float64(counts.ConsecutiveFailures))
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cbc.name).Set(0)

	return result, nil
}

// castResult safely type-casts the circuit breaker result with error checking.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to numeric value for metrics
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// stateToString converts circuit breaker state to string for logging
func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// FetchPolls retrieves every poll with circuit breaker protection
func (cbc *CircuitBreakerClient) FetchPolls(ctx context.Context, userID int64) ([]models.Poll, error) {
	polls, err := castResult[[]models.Poll](cbc.execute(func() (interface{}, error) {
		p, err := cbc.client.FetchPolls(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &p, nil
	}))
	if err != nil {
		return nil, err
	}
	return *polls, nil
}

// FetchPoll retrieves a single poll with circuit breaker protection
func (cbc *CircuitBreakerClient) FetchPoll(ctx context.Context, pollID, userID int64) (*models.Poll, error) {
	return castResult[models.Poll](cbc.execute(func() (interface{}, error) {
		return cbc.client.FetchPoll(ctx, pollID, userID)
	}))
}

// CreatePoll creates a poll with circuit breaker protection
func (cbc *CircuitBreakerClient) CreatePoll(ctx context.Context, payload *models.PollCreatePayload, creatorID int64) (*models.Poll, error) {
	return castResult[models.Poll](cbc.execute(func() (interface{}, error) {
		return cbc.client.CreatePoll(ctx, payload, creatorID)
	}))
}

// CastVote records a vote with circuit breaker protection
func (cbc *CircuitBreakerClient) CastVote(ctx context.Context, pollID, optionID, userID int64) (*models.VoteResponse, error) {
	return castResult[models.VoteResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.CastVote(ctx, pollID, optionID, userID)
	}))
}

// ToggleLike toggles a like with circuit breaker protection
func (cbc *CircuitBreakerClient) ToggleLike(ctx context.Context, pollID, userID int64) (*models.LikeResponse, error) {
	return castResult[models.LikeResponse](cbc.execute(func() (interface{}, error) {
		return cbc.client.ToggleLike(ctx, pollID, userID)
	}))
}

// ClosePoll closes a poll with circuit breaker protection
func (cbc *CircuitBreakerClient) ClosePoll(ctx context.Context, pollID, userID int64) (*models.Poll, error) {
	return castResult[models.Poll](cbc.execute(func() (interface{}, error) {
		return cbc.client.ClosePoll(ctx, pollID, userID)
	}))
}
