// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package cache memoizes path query results keyed by (start, goal) node pair.
//
// Two storage policies sit behind the single Cache type: a bounded LRU that
// serializes every access through one lock, and an unbounded sharded map that
// lets readers proceed in parallel. A cached nil path records that the goal is
// unreachable from the start, so repeated failing queries are also served from
// the cache.
//
// # Thread Safety
//
// All Cache methods are safe for concurrent use. Locks are held only for the
// duration of a single get or put, never across a search.
package cache

import "errors"

var (
	// ErrInvalidCapacity is returned when an LRU cache is configured with a
	// capacity of zero or less.
	ErrInvalidCapacity = errors.New("cache capacity must be greater than zero")

	// ErrUnknownPolicy is returned for an unrecognized policy name.
	ErrUnknownPolicy = errors.New("unknown cache policy")
)
