// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/pollsync/internal/config"
	"github.com/tomtom215/pollsync/internal/coordinator"
	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/models"
	"github.com/tomtom215/pollsync/internal/pollapi"
	"github.com/tomtom215/pollsync/internal/router"
	"github.com/tomtom215/pollsync/internal/stats"
	"github.com/tomtom215/pollsync/internal/store"
	"github.com/tomtom215/pollsync/internal/transport"
)

// Session is one running instance of the engine for one viewer. Everything it
// owns is created in NewSession and released by Close; nothing is global.
type Session struct {
	cfg     *config.Config
	api     pollapi.API
	breaker *pollapi.CircuitBreakerClient // nil when the breaker is disabled

	store       *store.PollStore
	busy        *store.BusySet
	coordinator *coordinator.Coordinator
	router      *router.Router
	transport   *transport.Client

	logger zerolog.Logger

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
}

// NewSession builds a session from cfg. The REST client is wrapped in a
// circuit breaker when cfg.Breaker.Enabled is set.
func NewSession(cfg *config.Config) *Session {
	var api pollapi.API = pollapi.NewClient(&cfg.API)
	var breaker *pollapi.CircuitBreakerClient
	if cfg.Breaker.Enabled {
		breaker = pollapi.NewCircuitBreakerClient(api, &cfg.Breaker)
		api = breaker
	}
	s := newSession(cfg, api)
	s.breaker = breaker
	return s
}

// newSession builds a session around an existing API implementation.
func newSession(cfg *config.Config, api pollapi.API) *Session {
	viewer := models.Viewer{UserID: cfg.Viewer.UserID, Username: cfg.Viewer.Username}

	ws := transport.New(transport.Config{
		URL:              cfg.WebSocketEndpoint(),
		ReconnectEnabled: cfg.Transport.ReconnectEnabled,
		ReconnectDelay:   cfg.Transport.ReconnectDelay,
		HandshakeTimeout: cfg.Transport.HandshakeTimeout,
		WriteTimeout:     cfg.Transport.WriteTimeout,
		PingInterval:     cfg.Transport.PingInterval,
	})

	polls := store.New()
	busy := store.NewBusySet()
	coord := coordinator.New(api, polls, busy, ws, viewer)

	return &Session{
		cfg:         cfg,
		api:         api,
		store:       polls,
		busy:        busy,
		coordinator: coord,
		router:      router.New(coord),
		transport:   ws,
		logger:      logging.WithComponent("session"),
	}
}

// Start wires the router to the transport, loads the initial poll list and
// opens the event stream. A failed initial load is recorded in the
// coordinator state and logged; the stream is opened regardless so that the
// session recovers as soon as the server does. Start is a no-op after the
// first call.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	if s.started || s.closed {
		s.mu.Unlock()
		return
	}
	s.started = true
	ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.transport.OnMessage(s.router.Handler(ctx))
	s.transport.OnStateChange(func(state transport.State) {
		s.logger.Info().Str("state", state.String()).Msg("Event stream state changed")
	})

	if err := s.coordinator.Refresh(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("Initial poll load failed")
	}

	s.transport.Connect(ctx)
	s.logger.Info().
		Int64("user_id", s.cfg.Viewer.UserID).
		Str("endpoint", s.cfg.WebSocketEndpoint()).
		Msg("Session started")
}

// Run starts the session and blocks until ctx is done or the transport is
// closed. The session is closed when Run returns.
func (s *Session) Run(ctx context.Context) error {
	s.Start(ctx)
	err := s.transport.Run(ctx)
	s.Close()
	return err
}

// Close tears the session down. The transport is closed first so that no
// further frames are routed, then the store stops accepting writes, then
// in-flight re-fetches are cancelled and awaited. Close is idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancel
	s.mu.Unlock()

	s.transport.Close()
	s.store.Close()
	if cancel != nil {
		cancel()
	}
	s.router.Wait()
	s.logger.Info().Msg("Session closed")
}

// Coordinator returns the mutation coordinator.
func (s *Session) Coordinator() *coordinator.Coordinator {
	return s.coordinator
}

// Store returns the poll store.
func (s *Session) Store() *store.PollStore {
	return s.store
}

// Busy returns the busy set.
func (s *Session) Busy() *store.BusySet {
	return s.busy
}

// Snapshot returns the current store snapshot.
func (s *Session) Snapshot() *store.Snapshot {
	return s.store.Snapshot()
}

// Stats computes summary figures over the current snapshot.
func (s *Session) Stats() stats.Stats {
	return stats.Compute(s.store.Snapshot())
}

// BusyIDs returns the poll ids with a mutation in flight.
func (s *Session) BusyIDs() []int64 {
	return s.busy.IDs()
}

// State returns the coordinator progress and error state.
func (s *Session) State() coordinator.State {
	return s.coordinator.State()
}

// Viewer returns the identity the session acts for.
func (s *Session) Viewer() models.Viewer {
	return s.coordinator.Viewer()
}

// TransportState returns the event stream lifecycle state.
func (s *Session) TransportState() transport.State {
	return s.transport.State()
}

// BreakerState returns the circuit breaker state, or "disabled".
func (s *Session) BreakerState() string {
	if s.breaker == nil {
		return "disabled"
	}
	return s.breaker.State()
}
