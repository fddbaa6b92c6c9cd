// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package store

import (
	"sort"
	"sync"

	"github.com/tomtom215/pollsync/internal/metrics"
)

// BusySet tracks polls with an in-flight user mutation so a presentation
// layer can disable their controls. It is advisory: it does not reject
// concurrent mutations on the same poll.
type BusySet struct {
	mu   sync.Mutex
	ids  map[int64]struct{}
	subs *subscribers[[]int64]
}

// NewBusySet creates an empty busy set.
func NewBusySet() *BusySet {
	return &BusySet{
		ids:  make(map[int64]struct{}),
		subs: newSubscribers[[]int64](),
	}
}

// Add marks the poll busy. It reports whether the poll was newly added.
func (b *BusySet) Add(id int64) bool {
	b.mu.Lock()
	if _, ok := b.ids[id]; ok {
		b.mu.Unlock()
		return false
	}
	b.ids[id] = struct{}{}
	ids := b.sortedLocked()
	b.mu.Unlock()

	b.publish(ids)
	return true
}

// Remove clears the poll. It reports whether the poll was busy.
func (b *BusySet) Remove(id int64) bool {
	b.mu.Lock()
	if _, ok := b.ids[id]; !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.ids, id)
	ids := b.sortedLocked()
	b.mu.Unlock()

	b.publish(ids)
	return true
}

// Has reports whether the poll is busy.
func (b *BusySet) Has(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.ids[id]
	return ok
}

// IDs returns the busy poll ids in ascending order.
func (b *BusySet) IDs() []int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sortedLocked()
}

// Len returns the number of busy polls.
func (b *BusySet) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ids)
}

// Subscribe registers fn to be called with the busy ids after every change.
func (b *BusySet) Subscribe(fn func([]int64)) (unsubscribe func()) {
	return b.subs.add(fn)
}

func (b *BusySet) sortedLocked() []int64 {
	ids := make([]int64, 0, len(b.ids))
	for id := range b.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (b *BusySet) publish(ids []int64) {
	metrics.SetBusyPolls(len(ids))
	b.subs.each(func(fn func([]int64)) {
		fn(append([]int64(nil), ids...))
	})
}
