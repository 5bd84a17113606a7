// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

// AStar finds a least-cost path from start to goal with forward A*.
//
// Description:
//
//	Consults the cache first; a hit (including a cached "no path") returns
//	without searching. Otherwise runs A* ordered by f = g + h with the
//	Euclidean heuristic, and stores the outcome under (start, goal) before
//	returning, whether or not a path was found.
//
// Inputs:
//
//	ctx - Trace context. Not used for cancellation.
//	start, goal - Node IDs. Unknown IDs yield no path and are not cached.
//
// Outputs:
//
//	*graph.Path - Waypoints from start to goal inclusive, or nil.
//	bool - True if a path exists.
//
// Thread Safety: Safe for concurrent use.
func (e *Engine) AStar(ctx context.Context, start, goal graph.NodeID) (*graph.Path, bool) {
	if p, hit := e.lookup(ctx, start, goal); hit {
		return p, p != nil
	}
	if !e.graph.Has(start) || !e.graph.Has(goal) {
		return nil, false
	}

	ctx, span := startSearchSpan(ctx, AlgorithmAStar, start, goal)
	defer span.End()

	e.searches.Add(1)
	began := time.Now()
	path, expanded := e.astar(start, goal)

	e.cache.Put(cache.Key{Start: start, Goal: goal}, path)
	recordSearch(ctx, AlgorithmAStar, path, expanded, began)
	setSearchSpanResult(span, path, expanded)
	return path, path != nil
}

func (e *Engine) astar(start, goal graph.NodeID) (*graph.Path, int) {
	fw := newScratch(e.graph.Cap())
	fw.seed(start, e.graph.Heuristic(start, goal))

	expanded := 0
	for {
		n, ok := fw.next()
		if !ok {
			return nil, expanded
		}
		expanded++

		if n == goal {
			ids, steps := fw.chain(goal)
			return e.assemble(ids, steps, nil, nil), expanded
		}

		for _, edge := range e.graph.Neighbors(n) {
			if fw.closed[edge.To] {
				continue
			}
			fw.relax(n, edge.To, edge.Cost, e.graph.Heuristic(edge.To, goal))
		}
	}
}
