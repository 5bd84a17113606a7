// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"
)

// Graph is a directed, weighted navigation graph.
//
// Node positions and adjacency live in flat slices indexed by NodeID, so
// lookups are O(1) and search scratch state can use the same indexing.
//
// Thread Safety:
//
//	NOT safe for concurrent use while building. Safe for concurrent reads
//	after Freeze.
type Graph struct {
	positions []Vec3
	present   []bool
	order     []NodeID

	outgoing [][]Edge
	incoming [][]Edge

	edgeCount int
	symmetric bool
	state     GraphState
	options   GraphOptions

	// BuiltAtMilli is when Freeze was called (0 if not frozen).
	BuiltAtMilli int64
}

// NewGraph creates an empty graph in the building state.
func NewGraph(opts ...GraphOption) *Graph {
	options := defaultGraphOptions()
	for _, opt := range opts {
		opt(&options)
	}

	g := &Graph{
		state:   GraphStateBuilding,
		options: options,
	}
	if options.CapacityHint > 0 {
		g.positions = make([]Vec3, 0, options.CapacityHint)
		g.present = make([]bool, 0, options.CapacityHint)
		g.order = make([]NodeID, 0, options.CapacityHint)
		g.outgoing = make([][]Edge, 0, options.CapacityHint)
	}
	return g
}

// State returns the current lifecycle state.
func (g *Graph) State() GraphState {
	return g.state
}

// IsFrozen returns true if the graph is in read-only mode.
func (g *Graph) IsFrozen() bool {
	return g.state == GraphStateReadOnly
}

// AddNode registers a node at a position.
//
// Description:
//
//	Inserts the node, or overwrites the position of an existing node with
//	the same ID. Arrays grow to id+1, so IDs should be dense.
//
// Inputs:
//
//	id - Non-negative node identifier.
//	pos - Position in mesh space.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
func (g *Graph) AddNode(id NodeID, pos Vec3) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if id < 0 {
		return fmt.Errorf("%w: negative id %d", ErrNodeNotFound, id)
	}

	g.grow(int(id) + 1)
	if !g.present[id] {
		g.present[id] = true
		g.order = append(g.order, id)
	}
	g.positions[id] = pos
	return nil
}

func (g *Graph) grow(n int) {
	for len(g.positions) < n {
		g.positions = append(g.positions, Vec3{})
		g.present = append(g.present, false)
		g.outgoing = append(g.outgoing, nil)
	}
}

// AddEdge appends a directed edge from -> to.
//
// Description:
//
//	Duplicates are kept and no reverse edge is created. The target is not
//	checked here; Freeze verifies every target once the mesh is loaded.
//
// Errors:
//
//	ErrGraphFrozen - Graph has been frozen
//	ErrNodeNotFound - Source node doesn't exist
//	ErrNegativeCost - Cost is below zero or NaN
func (g *Graph) AddEdge(from, to NodeID, cost float64) error {
	if g.state == GraphStateReadOnly {
		return ErrGraphFrozen
	}
	if !g.Has(from) {
		return fmt.Errorf("%w: source %d", ErrNodeNotFound, from)
	}
	if cost < 0 || math.IsNaN(cost) {
		return fmt.Errorf("%w: %d -> %d cost %g", ErrNegativeCost, from, to, cost)
	}

	g.outgoing[from] = append(g.outgoing[from], Edge{To: to, Cost: cost})
	g.edgeCount++
	return nil
}

// Freeze transitions the graph to read-only mode.
//
// Description:
//
//	Verifies that every edge target exists, builds the incoming adjacency
//	used by backward searches, and records whether edge costs are
//	symmetric. After Freeze, AddNode and AddEdge return ErrGraphFrozen.
//	Calling Freeze on a frozen graph is a no-op.
//
// Outputs:
//
//	error - ErrNodeNotFound wrapped with the offending edge. The graph
//	        stays in the building state on error.
//
// Thread Safety:
//
//	After Freeze returns, the graph can be read from multiple goroutines.
func (g *Graph) Freeze() error {
	if g.state == GraphStateReadOnly {
		return nil
	}

	incoming := make([][]Edge, len(g.positions))
	for from, edges := range g.outgoing {
		for _, e := range edges {
			if !g.Has(e.To) {
				return fmt.Errorf("%w: edge %d -> %d targets a missing node", ErrNodeNotFound, from, e.To)
			}
			incoming[e.To] = append(incoming[e.To], Edge{To: NodeID(from), Cost: e.Cost})
		}
	}

	g.incoming = incoming
	g.symmetric = g.detectSymmetry()
	g.state = GraphStateReadOnly
	g.BuiltAtMilli = time.Now().UnixMilli()
	return nil
}

// detectSymmetry reports whether, for every ordered pair with an edge, the
// cheapest edge u->v costs the same as the cheapest edge v->u.
func (g *Graph) detectSymmetry() bool {
	type pair struct{ from, to NodeID }

	cheapest := make(map[pair]float64, g.edgeCount)
	for from, edges := range g.outgoing {
		for _, e := range edges {
			k := pair{NodeID(from), e.To}
			if c, ok := cheapest[k]; !ok || e.Cost < c {
				cheapest[k] = e.Cost
			}
		}
	}

	for k, c := range cheapest {
		rc, ok := cheapest[pair{k.to, k.from}]
		if !ok || math.Abs(rc-c) > g.options.SymmetryTolerance {
			return false
		}
	}
	return true
}

// Symmetric reports whether every edge has a reverse edge of equal cost.
// Only meaningful after Freeze; false while building.
func (g *Graph) Symmetric() bool {
	return g.symmetric
}

// Has reports whether a node with the given ID exists.
func (g *Graph) Has(id NodeID) bool {
	return id >= 0 && int(id) < len(g.present) && g.present[id]
}

// Node returns the node with the given ID.
func (g *Graph) Node(id NodeID) (Node, bool) {
	if !g.Has(id) {
		return Node{}, false
	}
	return Node{ID: id, Pos: g.positions[id]}, true
}

// Position returns the position of id. The caller must ensure id exists.
func (g *Graph) Position(id NodeID) Vec3 {
	return g.positions[id]
}

// Neighbors returns the outgoing edges of id in insertion order.
// Callers must NOT modify the returned slice.
func (g *Graph) Neighbors(id NodeID) []Edge {
	if !g.Has(id) {
		return nil
	}
	return g.outgoing[id]
}

// Incoming returns the edges entering id, with Edge.To set to the tail.
// Returns nil before Freeze. Callers must NOT modify the returned slice.
func (g *Graph) Incoming(id NodeID) []Edge {
	if !g.Has(id) || g.incoming == nil {
		return nil
	}
	return g.incoming[id]
}

// Cap returns the length of per-node arrays: one more than the largest ID.
// Search scratch arrays are sized with it.
func (g *Graph) Cap() int {
	return len(g.positions)
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int {
	return len(g.order)
}

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int {
	return g.edgeCount
}

// Nodes returns an iterator over all nodes in insertion order.
func (g *Graph) Nodes() func(yield func(Node) bool) {
	return func(yield func(Node) bool) {
		for _, id := range g.order {
			if !yield(Node{ID: id, Pos: g.positions[id]}) {
				return
			}
		}
	}
}

// Heuristic estimates the cost from a to b as the Euclidean distance
// between their positions. Symmetric, and zero when a == b.
func (g *Graph) Heuristic(a, b NodeID) float64 {
	return g.positions[a].Distance(g.positions[b])
}

// NearestNode returns the node closest to p by Euclidean distance.
//
// Description:
//
//	Linear scan over every node. Ties resolve to the node inserted first,
//	including points so far away that every distance overflows to +Inf.
//
// Outputs:
//
//	NodeID - The nearest node.
//	bool - False only when the graph has no nodes.
func (g *Graph) NearestNode(p Vec3) (NodeID, bool) {
	if len(g.order) == 0 {
		return InvalidNode, false
	}
	best := g.order[0]
	bestDist := g.positions[best].Distance(p)
	for _, id := range g.order[1:] {
		if d := g.positions[id].Distance(p); d < bestDist {
			best, bestDist = id, d
		}
	}
	return best, true
}

// RandomNode returns a node chosen uniformly at random, or false when the
// graph is empty. r must not be shared between goroutines.
func (g *Graph) RandomNode(r *rand.Rand) (NodeID, bool) {
	if len(g.order) == 0 {
		return InvalidNode, false
	}
	return g.order[r.IntN(len(g.order))], true
}

// NodesWithinRadius returns every node whose position lies within radius
// of center, center included if it is a node. Linear scan.
func (g *Graph) NodesWithinRadius(center Vec3, radius float64) []NodeID {
	var out []NodeID
	for _, id := range g.order {
		if g.positions[id].Distance(center) <= radius {
			out = append(out, id)
		}
	}
	return out
}

// GraphStats contains statistics about the graph.
type GraphStats struct {
	NodeCount    int        `json:"node_count"`
	EdgeCount    int        `json:"edge_count"`
	Symmetric    bool       `json:"symmetric"`
	State        GraphState `json:"-"`
	BuiltAtMilli int64      `json:"built_at_milli"`
}

// Stats returns statistics about the graph.
func (g *Graph) Stats() GraphStats {
	return GraphStats{
		NodeCount:    g.NodeCount(),
		EdgeCount:    g.edgeCount,
		Symmetric:    g.symmetric,
		State:        g.state,
		BuiltAtMilli: g.BuiltAtMilli,
	}
}
