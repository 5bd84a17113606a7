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
	"container/heap"
	"math"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

// entry is one frontier item. A node may be queued several times with
// different scores; only the first pop is expanded.
type entry struct {
	node graph.NodeID
	g    float64
	f    float64
}

// frontierHeap is a min-heap on f. Ties prefer the deeper entry.
type frontierHeap []entry

func (h frontierHeap) Len() int { return len(h) }
func (h frontierHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].g > h[j].g
}
func (h frontierHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x any)   { *h = append(*h, x.(entry)) }
func (h *frontierHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// scratch is the per-search state of one search direction, indexed by
// NodeID. It is owned by a single call and discarded afterwards.
type scratch struct {
	gScore []float64
	parent []graph.NodeID
	via    []float64 // cost of the edge between a node and its parent
	closed []bool
	open   frontierHeap
}

func newScratch(n int) *scratch {
	s := &scratch{
		gScore: make([]float64, n),
		parent: make([]graph.NodeID, n),
		via:    make([]float64, n),
		closed: make([]bool, n),
	}
	for i := range s.gScore {
		s.gScore[i] = math.Inf(1)
		s.parent[i] = graph.InvalidNode
	}
	return s
}

// seed opens the search at root.
func (s *scratch) seed(root graph.NodeID, h float64) {
	s.gScore[root] = 0
	heap.Push(&s.open, entry{node: root, g: 0, f: h})
}

// relax records a cheaper route to to through from and queues it.
// Returns false if the route is not an improvement.
func (s *scratch) relax(from, to graph.NodeID, cost, h float64) bool {
	tentative := s.gScore[from] + cost
	if tentative >= s.gScore[to] {
		return false
	}
	s.gScore[to] = tentative
	s.parent[to] = from
	s.via[to] = cost
	heap.Push(&s.open, entry{node: to, g: tentative, f: tentative + h})
	return true
}

// next pops the best unsettled node and marks it closed. Stale duplicate
// entries are discarded. Returns false when the frontier is exhausted.
func (s *scratch) next() (graph.NodeID, bool) {
	for s.open.Len() > 0 {
		e := heap.Pop(&s.open).(entry)
		if s.closed[e.node] {
			continue
		}
		s.closed[e.node] = true
		return e.node, true
	}
	return graph.InvalidNode, false
}

// minF is a lower bound on the f-score of anything still queued.
func (s *scratch) minF() float64 {
	if s.open.Len() == 0 {
		return math.Inf(1)
	}
	return s.open[0].f
}

// chain walks back-pointers from n until the root, returning the visited
// nodes (n first) and the edge cost between each consecutive pair.
func (s *scratch) chain(n graph.NodeID) ([]graph.NodeID, []float64) {
	ids := []graph.NodeID{n}
	var steps []float64
	for limit := len(s.parent); s.parent[n] != graph.InvalidNode && limit > 0; limit-- {
		steps = append(steps, s.via[n])
		n = s.parent[n]
		ids = append(ids, n)
	}
	return ids, steps
}
