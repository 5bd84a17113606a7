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
	"hash/maphash"
	"sync"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

const defaultShardCount = 32

// shardedStore is an unbounded map split across independently locked shards.
type shardedStore struct {
	seed   maphash.Seed
	shards []shard
}

type shard struct {
	mu sync.RWMutex
	m  map[Key]*graph.Path
}

func newShardedStore(n int) *shardedStore {
	s := &shardedStore{
		seed:   maphash.MakeSeed(),
		shards: make([]shard, n),
	}
	for i := range s.shards {
		s.shards[i].m = make(map[Key]*graph.Path)
	}
	return s
}

func (s *shardedStore) shardFor(k Key) *shard {
	h := maphash.Comparable(s.seed, k)
	return &s.shards[h%uint64(len(s.shards))]
}

func (s *shardedStore) get(k Key) (*graph.Path, bool) {
	sh := s.shardFor(k)
	sh.mu.RLock()
	p, ok := sh.m[k]
	sh.mu.RUnlock()
	return p, ok
}

func (s *shardedStore) put(k Key, p *graph.Path) {
	sh := s.shardFor(k)
	sh.mu.Lock()
	sh.m[k] = p
	sh.mu.Unlock()
}

func (s *shardedStore) len() int {
	n := 0
	for i := range s.shards {
		s.shards[i].mu.RLock()
		n += len(s.shards[i].m)
		s.shards[i].mu.RUnlock()
	}
	return n
}

func (s *shardedStore) evictions() int64 { return 0 }
