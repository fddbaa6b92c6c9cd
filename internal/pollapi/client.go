// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package pollapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/tomtom215/pollsync/internal/config"
	"github.com/tomtom215/pollsync/internal/metrics"
	"github.com/tomtom215/pollsync/internal/models"
)

// API defines the poll server operations used by the engine.
// Both Client and CircuitBreakerClient implement this interface.
type API interface {
	FetchPolls(ctx context.Context, userID int64) ([]models.Poll, error)
	FetchPoll(ctx context.Context, pollID, userID int64) (*models.Poll, error)
	CreatePoll(ctx context.Context, payload *models.PollCreatePayload, creatorID int64) (*models.Poll, error)
	CastVote(ctx context.Context, pollID, optionID, userID int64) (*models.VoteResponse, error)
	ToggleLike(ctx context.Context, pollID, userID int64) (*models.LikeResponse, error)
	ClosePoll(ctx context.Context, pollID, userID int64) (*models.Poll, error)
}

// Ensure Client implements API
var _ API = (*Client)(nil)

// Client provides access to the poll server REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter // nil when request pacing is disabled
}

// NewClient creates a poll server client.
//
// When cfg.RequestsPerSecond is positive, requests are paced with a token
// bucket of that rate and cfg.Burst capacity; callers block until a token is
// available or their context is done.
func NewClient(cfg *config.APIConfig) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
	if cfg.RequestsPerSecond > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), burst)
	}
	return c
}

// FetchPolls retrieves every poll, with user_voted/user_liked set for userID.
// userID zero fetches the anonymous view.
func (c *Client) FetchPolls(ctx context.Context, userID int64) ([]models.Poll, error) {
	var polls []models.Poll
	if err := c.do(ctx, http.MethodGet, "/polls/", "/polls/", optionalUser("user_id", userID), nil, &polls); err != nil {
		return nil, fmt.Errorf("fetch polls: %w", err)
	}
	if polls == nil {
		polls = []models.Poll{}
	}
	return polls, nil
}

// FetchPoll retrieves a single poll.
func (c *Client) FetchPoll(ctx context.Context, pollID, userID int64) (*models.Poll, error) {
	var poll models.Poll
	path := "/polls/" + strconv.FormatInt(pollID, 10)
	if err := c.do(ctx, http.MethodGet, path, "/polls/{id}", optionalUser("user_id", userID), nil, &poll); err != nil {
		return nil, fmt.Errorf("fetch poll %d: %w", pollID, err)
	}
	return &poll, nil
}

// CreatePoll creates a poll owned by creatorID.
func (c *Client) CreatePoll(ctx context.Context, payload *models.PollCreatePayload, creatorID int64) (*models.Poll, error) {
	var poll models.Poll
	query := url.Values{"creator_id": {strconv.FormatInt(creatorID, 10)}}
	if err := c.do(ctx, http.MethodPost, "/polls/", "/polls/", query, payload, &poll); err != nil {
		return nil, fmt.Errorf("create poll: %w", err)
	}
	return &poll, nil
}

// CastVote records userID's vote for optionID.
func (c *Client) CastVote(ctx context.Context, pollID, optionID, userID int64) (*models.VoteResponse, error) {
	var vote models.VoteResponse
	body := models.VoteRequest{PollID: pollID, OptionID: optionID}
	if err := c.do(ctx, http.MethodPost, "/votes/", "/votes/", userQuery(userID), body, &vote); err != nil {
		return nil, fmt.Errorf("cast vote on poll %d: %w", pollID, err)
	}
	return &vote, nil
}

// ToggleLike likes the poll, or removes userID's like if one exists.
func (c *Client) ToggleLike(ctx context.Context, pollID, userID int64) (*models.LikeResponse, error) {
	var like models.LikeResponse
	body := models.LikeRequest{PollID: pollID}
	if err := c.do(ctx, http.MethodPost, "/likes/", "/likes/", userQuery(userID), body, &like); err != nil {
		return nil, fmt.Errorf("toggle like on poll %d: %w", pollID, err)
	}
	return &like, nil
}

// ClosePoll closes the poll and returns its updated state.
func (c *Client) ClosePoll(ctx context.Context, pollID, userID int64) (*models.Poll, error) {
	var poll models.Poll
	path := "/polls/" + strconv.FormatInt(pollID, 10) + "/close"
	if err := c.do(ctx, http.MethodPost, path, "/polls/{id}/close", userQuery(userID), nil, &poll); err != nil {
		return nil, fmt.Errorf("close poll %d: %w", pollID, err)
	}
	return &poll, nil
}

func userQuery(userID int64) url.Values {
	return url.Values{"user_id": {strconv.FormatInt(userID, 10)}}
}

// optionalUser omits the parameter for anonymous reads.
func optionalUser(key string, userID int64) url.Values {
	if userID <= 0 {
		return nil
	}
	return url.Values{key: {strconv.FormatInt(userID, 10)}}
}

// do performs one request. endpoint is the low-cardinality route used as the
// metrics label. A nil body sends an empty request body.
func (c *Client) do(ctx context.Context, method, path, endpoint string, query url.Values, body, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	fullURL := c.baseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reqBody io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPIRequest(method, endpoint, 0, time.Since(start))
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	metrics.RecordAPIRequest(method, endpoint, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// newAPIError builds an APIError from a non-2xx response, parsing the body as
// JSON when possible and falling back to raw text.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{
		Status:  resp.StatusCode,
		Message: http.StatusText(resp.StatusCode),
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err == nil {
		apiErr.Details = parsed
	} else {
		apiErr.Details = string(data)
	}
	return apiErr
}
