// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package pollapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pollsync/internal/config"
	"github.com/tomtom215/pollsync/internal/models"
)

// recordedRequest captures what the test server received.
type recordedRequest struct {
	method string
	path   string
	query  string
	body   string
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.body = string(body)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	client := NewClient(&config.APIConfig{BaseURL: server.URL + "/", Timeout: 5 * time.Second})
	return client, rec
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Requests(t *testing.T) {
	poll := models.Poll{ID: 7, Title: "Lunch?", IsActive: true, TotalVotes: 3}

	tests := []struct {
		name       string
		call       func(c *Client) error
		response   interface{}
		wantMethod string
		wantPath   string
		wantQuery  string
		wantBody   string
	}{
		{
			name:       "fetch polls for viewer",
			call:       func(c *Client) error { _, err := c.FetchPolls(context.Background(), 42); return err },
			response:   []models.Poll{poll},
			wantMethod: http.MethodGet,
			wantPath:   "/polls/",
			wantQuery:  "user_id=42",
		},
		{
			name:       "fetch polls anonymous",
			call:       func(c *Client) error { _, err := c.FetchPolls(context.Background(), 0); return err },
			response:   []models.Poll{},
			wantMethod: http.MethodGet,
			wantPath:   "/polls/",
			wantQuery:  "",
		},
		{
			name:       "fetch poll",
			call:       func(c *Client) error { _, err := c.FetchPoll(context.Background(), 7, 42); return err },
			response:   poll,
			wantMethod: http.MethodGet,
			wantPath:   "/polls/7",
			wantQuery:  "user_id=42",
		},
		{
			name: "create poll",
			call: func(c *Client) error {
				_, err := c.CreatePoll(context.Background(), &models.PollCreatePayload{Title: "Lunch?", Options: []string{"A", "B"}}, 42)
				return err
			},
			response:   poll,
			wantMethod: http.MethodPost,
			wantPath:   "/polls/",
			wantQuery:  "creator_id=42",
			wantBody:   `{"title":"Lunch?","options":["A","B"]}`,
		},
		{
			name:       "cast vote",
			call:       func(c *Client) error { _, err := c.CastVote(context.Background(), 7, 3, 42); return err },
			response:   models.VoteResponse{ID: 1, UserID: 42, PollID: 7, OptionID: 3},
			wantMethod: http.MethodPost,
			wantPath:   "/votes/",
			wantQuery:  "user_id=42",
			wantBody:   `{"poll_id":7,"option_id":3}`,
		},
		{
			name:       "toggle like",
			call:       func(c *Client) error { _, err := c.ToggleLike(context.Background(), 7, 42); return err },
			response:   map[string]interface{}{"message": "Like removed", "liked": false},
			wantMethod: http.MethodPost,
			wantPath:   "/likes/",
			wantQuery:  "user_id=42",
			wantBody:   `{"poll_id":7}`,
		},
		{
			name:       "close poll",
			call:       func(c *Client) error { _, err := c.ClosePoll(context.Background(), 7, 42); return err },
			response:   poll,
			wantMethod: http.MethodPost,
			wantPath:   "/polls/7/close",
			wantQuery:  "user_id=42",
			wantBody:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, rec := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusOK, tt.response)
			})

			if err := tt.call(client); err != nil {
				t.Fatalf("call error = %v", err)
			}
			if rec.method != tt.wantMethod {
				t.Errorf("method = %s, want %s", rec.method, tt.wantMethod)
			}
			if rec.path != tt.wantPath {
				t.Errorf("path = %s, want %s", rec.path, tt.wantPath)
			}
			if rec.query != tt.wantQuery {
				t.Errorf("query = %q, want %q", rec.query, tt.wantQuery)
			}
			if rec.body != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.body, tt.wantBody)
			}
		})
	}
}

func TestClient_DecodesResponses(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, models.Poll{
			ID:         7,
			Title:      "Lunch?",
			Options:    []models.Option{{ID: 1, PollID: 7, Text: "Pizza", VoteCount: 3}},
			TotalVotes: 3,
			UserVoted:  true,
		})
	})

	poll, err := client.FetchPoll(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("FetchPoll() error = %v", err)
	}
	if poll.ID != 7 || poll.TotalVotes != 3 || !poll.UserVoted || len(poll.Options) != 1 {
		t.Errorf("unexpected poll: %+v", poll)
	}
}

func TestClient_DecodesNaiveTimestamps(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 7,
			"title": "Lunch?",
			"creator_id": 3,
			"created_at": "2025-01-02T03:04:05.123456",
			"updated_at": "2025-01-02T04:00:00",
			"is_active": true,
			"closes_at": "2025-01-03T03:04:05",
			"options": [{"id": 1, "poll_id": 7, "text": "Pizza", "created_at": "2025-01-02T03:04:05.123456", "vote_count": 3}],
			"total_votes": 3,
			"total_likes": 0
		}`))
	})

	poll, err := client.FetchPoll(context.Background(), 7, 42)
	if err != nil {
		t.Fatalf("FetchPoll() error = %v", err)
	}
	wantCreated := time.Date(2025, 1, 2, 3, 4, 5, 123456000, time.UTC)
	if !poll.CreatedAt.Equal(wantCreated) {
		t.Errorf("CreatedAt = %v, want %v", poll.CreatedAt, wantCreated)
	}
	if !poll.UpdatedAt.Equal(time.Date(2025, 1, 2, 4, 0, 0, 0, time.UTC)) {
		t.Errorf("UpdatedAt = %v", poll.UpdatedAt)
	}
	if poll.ClosesAt == nil || !poll.ClosesAt.Equal(time.Date(2025, 1, 3, 3, 4, 5, 0, time.UTC)) {
		t.Errorf("ClosesAt = %v", poll.ClosesAt)
	}
	if len(poll.Options) != 1 || !poll.Options[0].CreatedAt.Equal(wantCreated) {
		t.Errorf("Options = %+v", poll.Options)
	}
}

func TestClient_CastVoteNaiveTimestamp(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 9, "user_id": 42, "poll_id": 7, "option_id": 1, "created_at": "2025-01-02T03:04:05.5"}`))
	})

	vote, err := client.CastVote(context.Background(), 7, 1, 42)
	if err != nil {
		t.Fatalf("CastVote() error = %v", err)
	}
	if vote.ID != 9 || vote.CreatedAt.Nanosecond() != 500000000 {
		t.Errorf("unexpected vote: %+v", vote)
	}
}

func TestClient_FetchPollsNullBody(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte("null"))
	})

	polls, err := client.FetchPolls(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchPolls() error = %v", err)
	}
	if polls == nil || len(polls) != 0 {
		t.Errorf("FetchPolls() = %#v, want empty non-nil slice", polls)
	}
}

func TestClient_APIError(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
		wantJSON   bool
	}{
		{"json detail", http.StatusBadRequest, `{"detail":"User has already voted on this poll"}`, "User has already voted on this poll", true},
		{"not found", http.StatusNotFound, `{"detail":"Poll not found"}`, "Poll not found", true},
		{"plain text", http.StatusBadGateway, "upstream unavailable", "upstream unavailable", false},
		{"empty body", http.StatusInternalServerError, "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.CastVote(context.Background(), 7, 1, 42)
			if err == nil {
				t.Fatal("CastVote() expected error")
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not *APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != http.StatusText(tt.status) {
				t.Errorf("Message = %q, want %q", apiErr.Message, http.StatusText(tt.status))
			}
			if got := apiErr.Detail(); got != tt.wantDetail {
				t.Errorf("Detail() = %q, want %q", got, tt.wantDetail)
			}
			if _, isMap := apiErr.Details.(map[string]interface{}); isMap != tt.wantJSON {
				t.Errorf("Details = %#v, parsed JSON = %v, want %v", apiErr.Details, isMap, tt.wantJSON)
			}
		})
	}
}

func TestClient_RateLimited(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		writeJSON(w, http.StatusOK, []models.Poll{})
	}))
	t.Cleanup(server.Close)

	client := NewClient(&config.APIConfig{
		BaseURL:           server.URL,
		Timeout:           5 * time.Second,
		RequestsPerSecond: 0.001,
		Burst:             1,
	})

	if _, err := client.FetchPolls(context.Background(), 1); err != nil {
		t.Fatalf("first FetchPolls() error = %v", err)
	}

	// Burst exhausted: the next call must wait far longer than the deadline.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if _, err := client.FetchPolls(ctx, 1); err == nil {
		t.Fatal("second FetchPolls() expected rate limiter error")
	}
	if got := hits.Load(); got != 1 {
		t.Errorf("server hits = %d, want 1", got)
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []models.Poll{})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.FetchPolls(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("FetchPolls() error = %v, want context.Canceled", err)
	}
}
