// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/tomtom215/pollsync/internal/logging"
)

// HTTPServer is the lifecycle subset of *http.Server.
type HTTPServer interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// StatusServerService runs the status HTTP server under supervision.
//
// ListenAndServe runs in its own goroutine. When the supervisor cancels ctx
// the server is shut down gracefully within shutdownTimeout. A listener
// failure is returned so the supervisor can restart the service.
//
//	server := &http.Server{Addr: cfg.Status.Addr, Handler: statusapi.NewRouter(session, &cfg.Status)}
//	tree.AddAPIService(services.NewStatusServerService(server, cfg.Status.ShutdownTimeout))
type StatusServerService struct {
	server          HTTPServer
	shutdownTimeout time.Duration
	name            string
}

// NewStatusServerService wraps server. A non-positive shutdownTimeout
// defaults to 10s.
func NewStatusServerService(server HTTPServer, shutdownTimeout time.Duration) *StatusServerService {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &StatusServerService{
		server:          server,
		shutdownTimeout: shutdownTimeout,
		name:            "status-server",
	}
}

// Serve implements suture.Service.
func (s *StatusServerService) Serve(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("status server failed: %w", err)
		}
		return nil

	case <-ctx.Done():
		// ctx is already cancelled; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()

		if err := s.server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("status server shutdown failed: %w", err)
		}
		<-errCh
		logging.Debug().Str("service", s.name).Msg("Status server stopped")
		return ctx.Err()
	}
}

// String implements fmt.Stringer; suture uses it in log messages.
func (s *StatusServerService) String() string {
	return s.name
}
