// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package store

import (
	"reflect"
	"sync"

	"github.com/tomtom215/pollsync/internal/logging"
	"github.com/tomtom215/pollsync/internal/metrics"
	"github.com/tomtom215/pollsync/internal/models"
)

// PollStore is the client-local cache of polls. All writes are whole-entity
// replacements or removals; there is no partial-field update, so concurrent
// writers resolve as last-writer-wins.
type PollStore struct {
	mu      sync.RWMutex
	polls   []models.Poll // newest first
	index   map[int64]int
	snap    *Snapshot
	version uint64
	closed  bool

	// notifyMu serializes subscriber callbacks so they observe versions in order.
	notifyMu  sync.Mutex
	delivered uint64
	subs      *subscribers[*Snapshot]
}

// New creates an empty store.
func New() *PollStore {
	s := &PollStore{
		index: make(map[int64]int),
		subs:  newSubscribers[*Snapshot](),
	}
	s.snap = newSnapshot(0, nil)
	return s
}

// Replace inserts the poll or overwrites the entry with the same id.
// A new poll is placed first; an existing poll keeps its position.
// Replacing with an identical poll changes nothing and notifies no one.
// It reports whether the store changed.
func (s *PollStore) Replace(poll models.Poll) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.discard("replace", poll.ID)
		return false
	}

	if i, ok := s.index[poll.ID]; ok {
		if reflect.DeepEqual(s.polls[i], poll) {
			s.mu.Unlock()
			return false
		}
		s.polls[i] = poll.Clone()
	} else {
		s.polls = append([]models.Poll{poll.Clone()}, s.polls...)
		s.reindex()
	}
	s.commit("replace")
	return true
}

// ReplaceAll resets the store to exactly the given polls, in the given order.
// When an id appears more than once the last value wins at the first position.
func (s *PollStore) ReplaceAll(polls []models.Poll) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.discard("replace_all", 0)
		return
	}

	next := make([]models.Poll, 0, len(polls))
	index := make(map[int64]int, len(polls))
	for i := range polls {
		if j, ok := index[polls[i].ID]; ok {
			next[j] = polls[i].Clone()
			continue
		}
		index[polls[i].ID] = len(next)
		next = append(next, polls[i].Clone())
	}
	s.polls = next
	s.index = index
	s.commit("replace_all")
}

// Remove deletes the poll. It reports whether the poll was present.
func (s *PollStore) Remove(id int64) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.discard("remove", id)
		return false
	}

	i, ok := s.index[id]
	if !ok {
		s.mu.Unlock()
		return false
	}
	s.polls = append(s.polls[:i:i], s.polls[i+1:]...)
	s.reindex()
	s.commit("remove")
	return true
}

// Get returns a deep copy of the poll, safe to modify.
func (s *PollStore) Get(id int64) (models.Poll, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[id]
	if !ok {
		return models.Poll{}, false
	}
	return s.polls[i].Clone(), true
}

// Snapshot returns the current snapshot.
func (s *PollStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to be called with the new snapshot after every
// structural change. Callbacks run on the writer's goroutine, one at a time
// and in version order; a callback must not write to the store. The returned
// function unregisters fn.
func (s *PollStore) Subscribe(fn func(*Snapshot)) (unsubscribe func()) {
	return s.subs.add(fn)
}

// Close makes the store read-only. Later writes, such as re-fetches that
// resolve after the session ended, are discarded.
func (s *PollStore) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.subs.clear()
}

// reindex rebuilds the id index. Caller holds mu.
func (s *PollStore) reindex() {
	s.index = make(map[int64]int, len(s.polls))
	for i := range s.polls {
		s.index[s.polls[i].ID] = i
	}
}

// commit publishes a new snapshot, releases mu and notifies subscribers.
// Caller holds mu.
func (s *PollStore) commit(op string) {
	s.version++
	s.snap = newSnapshot(s.version, s.polls)
	snap := s.snap
	s.mu.Unlock()

	metrics.RecordStoreWrite(op)
	metrics.UpdateStoreGauges(len(snap.Active), len(snap.Closed))

	s.notify()
}

func (s *PollStore) notify() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	// Deliver the latest snapshot; a writer that lost the race to notifyMu
	// finds its version already delivered.
	snap := s.Snapshot()
	if snap.Version <= s.delivered {
		return
	}
	s.delivered = snap.Version
	s.subs.each(func(fn func(*Snapshot)) { fn(snap) })
}

func (s *PollStore) discard(op string, id int64) {
	metrics.RecordStoreWrite("discarded")
	logging.Debug().Str("op", op).Int64("poll_id", id).Msg("Store closed, discarding write")
}
