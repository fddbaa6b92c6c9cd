// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package stats

import (
	"math"
	"sort"

	"github.com/tomtom215/pollsync/internal/models"
	"github.com/tomtom215/pollsync/internal/store"
)

// FeaturedCount is the number of closed polls shown as featured results.
const FeaturedCount = 4

// Stats summarizes a snapshot of the poll store.
type Stats struct {
	TotalVotes        int          `json:"total_votes"`
	TotalLikes        int          `json:"total_likes"`
	ActiveCount       int          `json:"active_count"`
	ClosedCount       int          `json:"closed_count"`
	TopPoll           *models.Poll `json:"top_poll"`
	ParticipationRate int          `json:"participation_rate"`
}

// Compute derives aggregate figures from snap. A nil or empty snapshot yields
// the zero Stats.
func Compute(snap *store.Snapshot) Stats {
	var s Stats
	if snap == nil || snap.Len() == 0 {
		return s
	}

	for i := range snap.All {
		s.TotalVotes += snap.All[i].TotalVotes
		s.TotalLikes += snap.All[i].TotalLikes
	}
	s.ActiveCount = len(snap.Active)
	s.ClosedCount = len(snap.Closed)

	// First closed poll wins ties.
	for i := range snap.Closed {
		if s.TopPoll == nil || snap.Closed[i].TotalVotes > s.TopPoll.TotalVotes {
			top := snap.Closed[i].Clone()
			s.TopPoll = &top
		}
	}

	s.ParticipationRate = participationRate(s.TotalVotes, snap.Len())
	return s
}

// participationRate is total votes over a nominal hundred voters per poll,
// expressed as a whole percentage.
func participationRate(totalVotes, polls int) int {
	if polls == 0 {
		return 0
	}
	return int(math.Round(float64(totalVotes) / float64(polls*100) * 100))
}

// FeaturedClosed returns up to n closed polls, most recently updated first.
func FeaturedClosed(snap *store.Snapshot, n int) []models.Poll {
	if snap == nil || n <= 0 || len(snap.Closed) == 0 {
		return []models.Poll{}
	}

	closed := make([]models.Poll, len(snap.Closed))
	for i := range snap.Closed {
		closed[i] = snap.Closed[i].Clone()
	}
	sort.SliceStable(closed, func(i, j int) bool {
		return closed[i].UpdatedAt.After(closed[j].UpdatedAt.Time)
	})

	if len(closed) > n {
		closed = closed[:n]
	}
	return closed
}
