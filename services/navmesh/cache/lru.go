// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package cache

import (
	"container/list"
	"sync"
	"sync/atomic"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

// lruStore is a fixed-size store that evicts the least recently used entry.
//
// Both get and put reorder the recency list, so every access takes the same
// exclusive lock.
//
//	| Operation | Complexity |
//	|-----------|------------|
//	| get       | O(1)       |
//	| put       | O(1)       |
type lruStore struct {
	mu       sync.Mutex
	capacity int
	items    map[Key]*list.Element
	order    *list.List // Front = most recent, Back = least recent

	evicted atomic.Int64
}

type lruEntry struct {
	key  Key
	path *graph.Path
}

func newLRUStore(capacity int) *lruStore {
	return &lruStore{
		capacity: capacity,
		items:    make(map[Key]*list.Element, capacity),
		order:    list.New(),
	}
}

func (s *lruStore) get(k Key) (*graph.Path, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.items[k]
	if !ok {
		return nil, false
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*lruEntry).path, true
}

func (s *lruStore) put(k Key, p *graph.Path) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.items[k]; ok {
		s.order.MoveToFront(elem)
		elem.Value.(*lruEntry).path = p
		return
	}

	if s.order.Len() >= s.capacity {
		if oldest := s.order.Back(); oldest != nil {
			s.order.Remove(oldest)
			delete(s.items, oldest.Value.(*lruEntry).key)
			s.evicted.Add(1)
		}
	}

	s.items[k] = s.order.PushFront(&lruEntry{key: k, path: p})
}

func (s *lruStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.order.Len()
}

func (s *lruStore) evictions() int64 {
	return s.evicted.Load()
}
