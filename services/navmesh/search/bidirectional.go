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
	"math"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

// Bidirectional finds a path by searching forward from start and backward
// from goal at the same time.
//
// Description:
//
//	The forward search follows outgoing edges guided by h(v, goal); the
//	backward search follows incoming edges guided by h(v, start). Each
//	round expands one node from each side. The stopping rule is chosen by
//	EngineOptions.Meeting (see MeetingRule).
//
//	The result is cached under (start, goal). When the graph's edge costs
//	are symmetric the reversed result is also cached under (goal, start);
//	on asymmetric graphs that entry would be wrong and is not written.
//
// Outputs:
//
//	*graph.Path - Waypoints from start to goal inclusive, or nil.
//	bool - True if a path exists.
//
// Thread Safety: Safe for concurrent use.
func (e *Engine) Bidirectional(ctx context.Context, start, goal graph.NodeID) (*graph.Path, bool) {
	if p, hit := e.lookup(ctx, start, goal); hit {
		return p, p != nil
	}
	if !e.graph.Has(start) || !e.graph.Has(goal) {
		return nil, false
	}

	ctx, span := startSearchSpan(ctx, AlgorithmBidirectional, start, goal)
	defer span.End()

	e.searches.Add(1)
	began := time.Now()
	path, expanded := e.bidirectional(start, goal)

	e.cache.Put(cache.Key{Start: start, Goal: goal}, path)
	if e.graph.Symmetric() {
		e.cache.Put(cache.Key{Start: goal, Goal: start}, path.Reverse(e.options.TimePerUnit))
	}
	recordSearch(ctx, AlgorithmBidirectional, path, expanded, began)
	setSearchSpanResult(span, path, expanded)
	return path, path != nil
}

func (e *Engine) bidirectional(start, goal graph.NodeID) (*graph.Path, int) {
	if start == goal {
		return graph.NewPath(e.graph, []graph.NodeID{start}, nil, e.options.TimePerUnit), 0
	}

	n := e.graph.Cap()
	fw, bw := newScratch(n), newScratch(n)
	fw.seed(start, e.graph.Heuristic(start, goal))
	bw.seed(goal, e.graph.Heuristic(goal, start))

	bounded := e.options.Meeting == MeetingBounded
	best := math.Inf(1)
	meet := graph.InvalidNode
	expanded := 0

	// touch updates the best complete route through v.
	touch := func(v graph.NodeID) {
		if c := fw.gScore[v] + bw.gScore[v]; c < best {
			best, meet = c, v
		}
	}

	for fw.open.Len() > 0 && bw.open.Len() > 0 {
		if bounded && meet != graph.InvalidNode && (fw.minF() >= best || bw.minF() >= best) {
			break
		}

		// Forward step.
		u, ok := fw.next()
		if !ok {
			break
		}
		expanded++
		if !bounded && bw.closed[u] {
			meet = u
			break
		}
		for _, edge := range e.graph.Neighbors(u) {
			if fw.closed[edge.To] {
				continue
			}
			if fw.relax(u, edge.To, edge.Cost, e.graph.Heuristic(edge.To, goal)) && bounded {
				touch(edge.To)
			}
		}

		// Backward step.
		v, ok := bw.next()
		if !ok {
			break
		}
		expanded++
		if !bounded && fw.closed[v] {
			meet = v
			break
		}
		for _, edge := range e.graph.Incoming(v) {
			if bw.closed[edge.To] {
				continue
			}
			if bw.relax(v, edge.To, edge.Cost, e.graph.Heuristic(edge.To, start)) && bounded {
				touch(edge.To)
			}
		}
	}

	if meet == graph.InvalidNode {
		return nil, expanded
	}

	fwdIDs, fwdSteps := fw.chain(meet)
	bwdIDs, bwdSteps := bw.chain(meet)
	return e.assemble(fwdIDs, fwdSteps, bwdIDs, bwdSteps), expanded
}
