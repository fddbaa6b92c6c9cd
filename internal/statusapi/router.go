// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package statusapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pollsync/internal/config"
	"github.com/tomtom215/pollsync/internal/coordinator"
	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/metrics"
	"github.com/tomtom215/pollsync/internal/models"
	"github.com/tomtom215/pollsync/internal/store"
	"github.com/tomtom215/pollsync/internal/transport"
)

// Source is the read-only view of a running session. engine.Session
// implements it.
type Source interface {
	Snapshot() *store.Snapshot
	BusyIDs() []int64
	State() coordinator.State
	Viewer() models.Viewer
	TransportState() transport.State
	BreakerState() string
}

// Handler serves the status endpoints.
type Handler struct {
	source Source
}

// NewRouter returns the status surface:
//
//	GET /api/v1/health        session health summary
//	GET /api/v1/health/live   liveness
//	GET /api/v1/health/ready  503 until the event stream is open
//	GET /api/v1/polls         cached polls, ?status=active|closed
//	GET /api/v1/polls/{id}    one cached poll
//	GET /api/v1/stats         aggregate figures and featured results
//	GET /api/v1/busy          poll ids with a mutation in flight
//	GET /metrics              Prometheus metrics
func NewRouter(source Source, cfg *config.StatusConfig) http.Handler {
	h := &Handler{source: source}
	r := chi.NewRouter()

	r.Use(requestIDWithLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitByIP(cfg.RateLimitRequests, cfg.RateLimitWindow))
		r.Use(recordRequests)

		r.Route("/health", func(r chi.Router) {
			r.Get("/", h.Health)
			r.Get("/live", h.HealthLive)
			r.Get("/ready", h.HealthReady)
		})
		r.Get("/polls", h.Polls)
		r.Get("/polls/{id}", h.Poll)
		r.Get("/stats", h.Stats)
		r.Get("/busy", h.Busy)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestIDWithLogging assigns a request id and carries it as the logging
// correlation id.
func requestIDWithLogging(next http.Handler) http.Handler {
	return chimiddleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if id := chimiddleware.GetReqID(ctx); id != "" {
			ctx = logging.ContextWithCorrelationID(ctx, id)
		}
		next.ServeHTTP(w, r.WithContext(ctx))
	}))
}

// recordRequests counts requests by route pattern and status code.
func recordRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordStatusRequest(route, status)
	})
}
