// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package statusapi

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/pollsync/internal/models"
	"github.com/tomtom215/pollsync/internal/stats"
	"github.com/tomtom215/pollsync/internal/transport"
)

// Health status values.
const (
	healthHealthy  = "healthy"
	healthDegraded = "degraded"
)

// HealthStatus summarizes the session for operators.
type HealthStatus struct {
	Status    string `json:"status"`
	Transport string `json:"transport"`
	Breaker   string `json:"breaker"`
	UserID    int64  `json:"user_id"`
	Polls     int    `json:"polls"`
	Busy      int    `json:"busy"`
	Loading   bool   `json:"loading"`
	Creating  bool   `json:"creating"`
	LastError string `json:"last_error,omitempty"`
}

// StatsResponse is the body of GET /api/v1/stats.
type StatsResponse struct {
	stats.Stats
	Featured []models.Poll `json:"featured"`
}

// Health reports transport, breaker and coordinator state. The session is
// degraded while the event stream is not open or the breaker is open.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()
	state := h.source.State()
	ts := h.source.TransportState()
	breaker := h.source.BreakerState()

	status := healthHealthy
	if ts != transport.StateOpen || breaker == "open" {
		status = healthDegraded
	}

	respondSuccess(w, snap.Version, HealthStatus{
		Status:    status,
		Transport: ts.String(),
		Breaker:   breaker,
		UserID:    h.source.Viewer().UserID,
		Polls:     snap.Len(),
		Busy:      len(h.source.BusyIDs()),
		Loading:   state.Loading,
		Creating:  state.Creating,
		LastError: state.LastError,
	})
}

// HealthLive always succeeds while the process is serving.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, 0, map[string]interface{}{"alive": true})
}

// HealthReady succeeds once the event stream is open.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ts := h.source.TransportState()
	if ts != transport.StateOpen {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "Event stream is "+ts.String(), nil)
		return
	}
	respondSuccess(w, 0, map[string]interface{}{"ready": true})
}

// Polls lists the cached polls, newest first. ?status=active or
// ?status=closed selects one partition.
func (h *Handler) Polls(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()

	var polls []models.Poll
	switch r.URL.Query().Get("status") {
	case "":
		polls = snap.All
	case "active":
		polls = snap.Active
	case "closed":
		polls = snap.Closed
	default:
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "status must be active or closed", nil)
		return
	}
	if polls == nil {
		polls = []models.Poll{}
	}

	respondSuccess(w, snap.Version, polls)
}

// Poll returns one cached poll.
func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "id must be a positive integer", nil)
		return
	}

	snap := h.source.Snapshot()
	poll, ok := snap.ByID(id)
	if !ok {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Poll not found", nil)
		return
	}

	respondSuccess(w, snap.Version, poll)
}

// Stats returns aggregate figures and the featured closed polls.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	snap := h.source.Snapshot()
	respondSuccess(w, snap.Version, StatsResponse{
		Stats:    stats.Compute(snap),
		Featured: stats.FeaturedClosed(snap, stats.FeaturedCount),
	})
}

// Busy lists poll ids with a mutation in flight.
func (h *Handler) Busy(w http.ResponseWriter, r *http.Request) {
	ids := h.source.BusyIDs()
	if ids == nil {
		ids = []int64{}
	}
	respondSuccess(w, h.source.Snapshot().Version, map[string]interface{}{"poll_ids": ids})
}
