// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package main

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tomtom215/pollsync/internal/config"
	"github.com/tomtom215/pollsync/internal/engine"
	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/stats"
	"github.com/tomtom215/pollsync/internal/statusapi"
	"github.com/tomtom215/pollsync/internal/store"
	"github.com/tomtom215/pollsync/internal/supervisor"
	"github.com/tomtom215/pollsync/internal/supervisor/services"
)

func main() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logging.Warn().Err(err).Msg("Failed to read .env file")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("api_url", cfg.APIBaseURL()).
		Str("ws_endpoint", cfg.WebSocketEndpoint()).
		Int64("user_id", cfg.Viewer.UserID).
		Bool("breaker", cfg.Breaker.Enabled).
		Bool("status_server", cfg.Status.Enabled).
		Msg("Configuration loaded")
	if cfg.Viewer.UserID == 0 {
		logging.Warn().Msg("POLLSYNC_USER_ID not set, running anonymously (mutations disabled)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	session := engine.NewSession(cfg)
	unsubscribe := session.Store().Subscribe(logSnapshot)
	defer unsubscribe()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfigFrom(cfg.Supervisor))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddSessionService(services.NewSessionService(session))

	if cfg.Status.Enabled {
		server := &http.Server{
			Addr:              cfg.Status.Addr,
			Handler:           statusapi.NewRouter(session, &cfg.Status),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		tree.AddAPIService(services.NewStatusServerService(server, cfg.Status.ShutdownTimeout))
		logging.Info().Str("addr", server.Addr).Msg("Status server service added")
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	// The session service may already have been removed from the tree.
	session.Close()

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Pollsync stopped")
}

// logSnapshot logs the aggregate figures after every store change.
func logSnapshot(snap *store.Snapshot) {
	s := stats.Compute(snap)
	event := logging.Info().
		Uint64("version", snap.Version).
		Int("active", s.ActiveCount).
		Int("closed", s.ClosedCount).
		Int("total_votes", s.TotalVotes).
		Int("total_likes", s.TotalLikes).
		Int("participation_rate", s.ParticipationRate)
	if s.TopPoll != nil {
		event = event.Int64("top_poll_id", s.TopPoll.ID).Str("top_poll", s.TopPoll.Title)
	}
	event.Msg("Polls updated")
}
