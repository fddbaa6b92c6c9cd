// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package store

import "github.com/tomtom215/pollsync/internal/models"

// Snapshot is an immutable view of the store at one version. The same
// pointer is returned by PollStore.Snapshot until the next structural
// change, so consumers can compare pointers to detect changes.
//
// Snapshots share poll data with each other; callers must not modify the
// polls they read from one. Use PollStore.Get for a private copy.
type Snapshot struct {
	// Version increases by one with every structural change.
	Version uint64
	// All polls, newest first.
	All []models.Poll
	// Active and Closed partition All by IsActive, preserving order.
	Active []models.Poll
	Closed []models.Poll

	index map[int64]int
}

// ByID returns the poll with the given id.
func (s *Snapshot) ByID(id int64) (models.Poll, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Poll{}, false
	}
	return s.All[i], true
}

// Len returns the number of polls.
func (s *Snapshot) Len() int {
	return len(s.All)
}

func newSnapshot(version uint64, polls []models.Poll) *Snapshot {
	snap := &Snapshot{
		Version: version,
		All:     make([]models.Poll, len(polls)),
		Active:  make([]models.Poll, 0, len(polls)),
		Closed:  make([]models.Poll, 0),
		index:   make(map[int64]int, len(polls)),
	}
	copy(snap.All, polls)
	for i := range snap.All {
		p := snap.All[i]
		snap.index[p.ID] = i
		if p.IsActive {
			snap.Active = append(snap.Active, p)
		} else {
			snap.Closed = append(snap.Closed, p)
		}
	}
	return snap
}
