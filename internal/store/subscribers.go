// Pollsync - Real-time Poll Synchronization Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pollsync

package store

import (
	"sort"
	"sync"
)

// subscribers is a registry of change callbacks keyed by registration order.
type subscribers[T any] struct {
	mu   sync.Mutex
	next uint64
	fns  map[uint64]func(T)
}

func newSubscribers[T any]() *subscribers[T] {
	return &subscribers[T]{fns: make(map[uint64]func(T))}
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.next
	s.next++
	s.fns[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.fns, id)
			s.mu.Unlock()
		})
	}
}

// each calls visit for every callback in registration order, outside the lock.
func (s *subscribers[T]) each(visit func(func(T))) {
	s.mu.Lock()
	ids := make([]uint64, 0, len(s.fns))
	for id := range s.fns {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	fns := make([]func(T), len(ids))
	for i, id := range ids {
		fns[i] = s.fns[id]
	}
	s.mu.Unlock()

	for _, fn := range fns {
		visit(fn)
	}
}

func (s *subscribers[T]) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = make(map[uint64]func(T))
}
