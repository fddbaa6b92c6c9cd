// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package engine

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/pollsync/internal/config"
	"github.com/tomtom215/pollsync/internal/models"
	"github.com/tomtom215/pollsync/internal/transport"
)

// pollServer is a minimal poll server: REST endpoints backed by a map and a
// /ws endpoint that hands connections to the test.
type pollServer struct {
	server *httptest.Server
	conns  chan *websocket.Conn

	mu    sync.Mutex
	polls map[int64]models.Poll
	votes int
}

func newPollServer(t *testing.T, polls ...models.Poll) *pollServer {
	t.Helper()
	ps := &pollServer{
		conns: make(chan *websocket.Conn, 4),
		polls: make(map[int64]models.Poll),
	}
	for _, p := range polls {
		ps.polls[p.ID] = p
	}

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ps.conns <- conn
	})
	mux.HandleFunc("GET /polls/", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		list := make([]models.Poll, 0, len(ps.polls))
		for _, p := range ps.polls {
			list = append(list, p)
		}
		writeJSON(w, http.StatusOK, list)
	})
	mux.HandleFunc("GET /polls/{id}", func(w http.ResponseWriter, r *http.Request) {
		ps.mu.Lock()
		defer ps.mu.Unlock()
		for id, p := range ps.polls {
			if r.PathValue("id") == strconv.FormatInt(id, 10) {
				writeJSON(w, http.StatusOK, p)
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Poll not found"})
	})
	mux.HandleFunc("POST /votes/", func(w http.ResponseWriter, r *http.Request) {
		var req models.VoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "bad body"})
			return
		}
		ps.mu.Lock()
		defer ps.mu.Unlock()
		p := ps.polls[req.PollID]
		for i := range p.Options {
			if p.Options[i].ID == req.OptionID {
				p.Options[i].VoteCount++
			}
		}
		p.TotalVotes++
		p.UserVoted = true
		ps.polls[req.PollID] = p
		ps.votes++
		writeJSON(w, http.StatusOK, models.VoteResponse{ID: 1, PollID: req.PollID, OptionID: req.OptionID})
	})

	ps.server = httptest.NewServer(mux)
	t.Cleanup(ps.server.Close)
	return ps
}

func (ps *pollServer) set(p models.Poll) {
	ps.mu.Lock()
	ps.polls[p.ID] = p
	ps.mu.Unlock()
}

func (ps *pollServer) nextConn(t *testing.T) *websocket.Conn {
	t.Helper()
	select {
	case conn := <-ps.conns:
		t.Cleanup(func() { _ = conn.Close() })
		return conn
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event stream connection")
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func testConfig(baseURL string, userID int64) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			BaseURL: baseURL,
			Timeout: 2 * time.Second,
		},
		Transport: config.TransportConfig{
			Path:             "/ws",
			ReconnectEnabled: true,
			ReconnectDelay:   50 * time.Millisecond,
			HandshakeTimeout: time.Second,
			WriteTimeout:     time.Second,
		},
		Viewer: config.ViewerConfig{UserID: userID},
	}
}

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal(msg)
}

func samplePoll() models.Poll {
	return models.Poll{
		ID:       7,
		Title:    "Colour",
		IsActive: true,
		Options: []models.Option{
			{ID: 1, PollID: 7, Text: "Red", VoteCount: 3},
			{ID: 2, PollID: 7, Text: "Blue", VoteCount: 1},
		},
		TotalVotes: 4,
	}
}

func TestSession_InitialLoadAndPushedUpdate(t *testing.T) {
	ps := newPollServer(t, samplePoll())
	session := NewSession(testConfig(ps.server.URL, 42))
	defer session.Close()

	session.Start(context.Background())
	conn := ps.nextConn(t)

	if _, ok := session.Store().Get(7); !ok {
		t.Fatal("initial load did not populate the store")
	}
	waitFor(t, func() bool { return session.TransportState() == transport.StateOpen }, "transport never opened")

	updated := samplePoll()
	updated.Title = "Favourite colour"
	ps.set(updated)

	// Double-encoded envelope as broadcast by the server.
	frame := `{"message":"{\"type\":\"poll_updated\",\"poll_id\":7}"}`
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, func() bool {
		p, _ := session.Snapshot().ByID(7)
		return p.Title == "Favourite colour"
	}, "pushed update was not re-fetched")
}

func TestSession_DeleteEventRemovesPoll(t *testing.T) {
	ps := newPollServer(t, samplePoll())
	session := NewSession(testConfig(ps.server.URL, 42))
	defer session.Close()

	session.Start(context.Background())
	conn := ps.nextConn(t)
	session.Busy().Add(7)

	if err := conn.WriteJSON(map[string]interface{}{"type": "poll_deleted", "poll_id": 7}); err != nil {
		t.Fatalf("write: %v", err)
	}

	waitFor(t, func() bool { _, ok := session.Store().Get(7); return !ok }, "poll 7 not removed")
	if session.Busy().Has(7) {
		t.Error("poll 7 still busy after delete")
	}
}

func TestSession_VoteNotifiesStream(t *testing.T) {
	ps := newPollServer(t, samplePoll())
	session := NewSession(testConfig(ps.server.URL, 42))
	defer session.Close()

	session.Start(context.Background())
	conn := ps.nextConn(t)
	waitFor(t, func() bool { return session.TransportState() == transport.StateOpen }, "transport never opened")

	if err := session.Coordinator().Vote(context.Background(), 7, 2); err != nil {
		t.Fatalf("Vote() error = %v", err)
	}

	p, _ := session.Snapshot().ByID(7)
	if opt, _ := p.Option(2); opt.VoteCount != 2 {
		t.Errorf("option 2 VoteCount = %d, want 2", opt.VoteCount)
	}
	if session.Busy().Has(7) {
		t.Error("poll 7 still busy")
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event models.OutboundEvent
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("read notification: %v", err)
	}
	if event.Type != models.EventPollUpdated || event.PollID != 7 {
		t.Errorf("notification = %+v", event)
	}

	st := session.Stats()
	if st.TotalVotes != 5 || st.ActiveCount != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestSession_InitialLoadFailureIsRecorded(t *testing.T) {
	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer failing.Close()

	session := NewSession(testConfig(failing.URL, 0))
	defer session.Close()

	session.Start(context.Background())

	if got := session.State().LastError; got != "Failed to load polls" {
		t.Errorf("LastError = %q", got)
	}
	if session.Viewer().Authenticated() {
		t.Error("viewer should be anonymous")
	}
}

func TestSession_CloseDiscardsLateWrites(t *testing.T) {
	ps := newPollServer(t, samplePoll())
	session := NewSession(testConfig(ps.server.URL, 42))

	session.Start(context.Background())
	ps.nextConn(t)

	session.Close()
	session.Close()

	before := session.Snapshot()
	if err := session.Coordinator().RefreshPoll(context.Background(), 7); err != nil {
		t.Fatalf("RefreshPoll() error = %v", err)
	}
	if session.Snapshot() != before {
		t.Error("store written after Close")
	}
	if session.TransportState() != transport.StateClosed {
		t.Errorf("TransportState() = %v, want closed", session.TransportState())
	}
}

func TestSession_Run(t *testing.T) {
	ps := newPollServer(t)
	session := NewSession(testConfig(ps.server.URL, 42))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- session.Run(ctx) }()

	ps.nextConn(t)
	cancel()

	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestSession_BreakerState(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1", 42)
	if got := NewSession(cfg).BreakerState(); got != "disabled" {
		t.Errorf("BreakerState() = %q, want disabled", got)
	}

	cfg.Breaker = config.BreakerConfig{
		Enabled:      true,
		MaxRequests:  1,
		Interval:     time.Minute,
		Timeout:      time.Minute,
		MinRequests:  1,
		FailureRatio: 0.5,
	}
	if got := NewSession(cfg).BreakerState(); got != "closed" {
		t.Errorf("BreakerState() = %q, want closed", got)
	}
}

func TestSession_EndpointFromConfig(t *testing.T) {
	cfg := testConfig("https://polls.example.com/", 1)
	if got := cfg.WebSocketEndpoint(); !strings.HasPrefix(got, "wss://polls.example.com/ws") {
		t.Errorf("WebSocketEndpoint() = %q", got)
	}
}
