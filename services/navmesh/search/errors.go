// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package search finds least-cost paths on a frozen navmesh graph.
//
// Two strategies are provided: unidirectional A* and bidirectional A*. Both
// consult a shared result cache before searching and record their outcome,
// including "no path", after searching.
//
// # Thread Safety
//
// An Engine is safe for concurrent use. Per-search scratch state (scores,
// back-pointers, closed markers, frontier) is allocated by each call and never
// shared; the graph is read-only and the cache synchronizes itself.
//
// # Cancellation
//
// Searches always run to natural termination. The context passed to search
// methods carries trace and metric context only.
package search

import "errors"

var (
	// ErrUnknownAlgorithm is returned for an unrecognized algorithm name.
	ErrUnknownAlgorithm = errors.New("unknown search algorithm")

	// ErrUnknownMeetingRule is returned for an unrecognized meeting rule name.
	ErrUnknownMeetingRule = errors.New("unknown meeting rule")

	// ErrNilCache is returned when an engine is built without a cache.
	ErrNilCache = errors.New("search engine requires a cache")
)
