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
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

// Key identifies a directed query. (a, b) and (b, a) are different keys.
type Key struct {
	Start graph.NodeID
	Goal  graph.NodeID
}

// Policy selects the storage strategy of a Cache.
type Policy string

const (
	// PolicyLRU is a bounded cache that evicts the least recently used entry
	// when full. Every access takes one exclusive lock.
	PolicyLRU Policy = "lru"

	// PolicyConcurrent is an unbounded sharded map. Entries are never
	// evicted and lookups on different shards do not contend.
	PolicyConcurrent Policy = "concurrent"
)

// ParsePolicy converts a configuration string into a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case PolicyLRU, PolicyConcurrent:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// store is the storage strategy behind a Cache.
type store interface {
	get(k Key) (*graph.Path, bool)
	put(k Key, p *graph.Path)
	len() int
	evictions() int64
}

// Cache memoizes search results, including proven-unreachable pairs.
//
// Description:
//
//	Paths are cloned on the way in and on the way out, so callers can never
//	observe or cause mutation of a shared entry.
//
// Thread Safety: All methods are safe for concurrent use.
type Cache struct {
	policy   Policy
	capacity int
	store    store

	// Stats (atomic for lock-free reads)
	hits   atomic.Int64
	misses atomic.Int64
}

// New creates a cache with the given policy.
//
// Inputs:
//
//	policy - PolicyLRU or PolicyConcurrent.
//	capacity - Maximum entries for PolicyLRU. Must be > 0 for LRU; ignored
//	           by PolicyConcurrent.
//
// Errors:
//
//	ErrInvalidCapacity - LRU with capacity <= 0
//	ErrUnknownPolicy - Policy not recognized
func New(policy Policy, capacity int) (*Cache, error) {
	c := &Cache{policy: policy, capacity: capacity}

	switch policy {
	case PolicyLRU:
		if capacity <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, capacity)
		}
		c.store = newLRUStore(capacity)
	case PolicyConcurrent:
		c.capacity = 0
		c.store = newShardedStore(defaultShardCount)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPolicy, policy)
	}
	return c, nil
}

// Get looks up a query result.
//
// Outputs:
//
//	*graph.Path - A copy of the cached path. Nil when the pair was cached
//	              as unreachable.
//	bool - True if the key is present. (nil, true) means "known no path",
//	       (nil, false) means "never computed".
func (c *Cache) Get(ctx context.Context, k Key) (*graph.Path, bool) {
	p, ok := c.store.get(k)
	if !ok {
		c.misses.Add(1)
		recordLookup(ctx, c.policy, false)
		return nil, false
	}
	c.hits.Add(1)
	recordLookup(ctx, c.policy, true)
	return p.Clone(), true
}

// Put stores a result, overwriting any existing entry. A nil path records
// that goal is unreachable from start.
func (c *Cache) Put(k Key, p *graph.Path) {
	c.store.put(k, p.Clone())
}

// Len returns the number of entries.
func (c *Cache) Len() int {
	return c.store.len()
}

// Policy returns the storage policy.
func (c *Cache) Policy() Policy {
	return c.policy
}

// Stats contains cache effectiveness counters.
type Stats struct {
	Policy    Policy  `json:"policy"`
	Capacity  int     `json:"capacity"`
	Entries   int     `json:"entries"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

// Stats returns a snapshot of the counters.
func (c *Cache) Stats() Stats {
	hits, misses := c.hits.Load(), c.misses.Load()
	s := Stats{
		Policy:    c.policy,
		Capacity:  c.capacity,
		Entries:   c.store.len(),
		Hits:      hits,
		Misses:    misses,
		Evictions: c.store.evictions(),
	}
	if total := hits + misses; total > 0 {
		s.HitRate = float64(hits) / float64(total)
	}
	return s
}
