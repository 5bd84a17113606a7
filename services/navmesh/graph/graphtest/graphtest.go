// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graphtest builds small frozen graphs for tests across the navmesh
// packages.
package graphtest

import (
	"math/rand/v2"
	"testing"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/stretchr/testify/require"
)

// Builder wraps graph construction with require-based error checks.
type Builder struct {
	t testing.TB
	g *graph.Graph
}

// New starts a builder.
func New(t testing.TB) *Builder {
	t.Helper()
	return &Builder{t: t, g: graph.NewGraph()}
}

// Node adds a node.
func (b *Builder) Node(id graph.NodeID, x, y, z float64) *Builder {
	b.t.Helper()
	require.NoError(b.t, b.g.AddNode(id, graph.Vec3{X: x, Y: y, Z: z}))
	return b
}

// Edge adds a directed edge.
func (b *Builder) Edge(from, to graph.NodeID, cost float64) *Builder {
	b.t.Helper()
	require.NoError(b.t, b.g.AddEdge(from, to, cost))
	return b
}

// BiEdge adds edges in both directions with the same cost.
func (b *Builder) BiEdge(u, v graph.NodeID, cost float64) *Builder {
	b.t.Helper()
	return b.Edge(u, v, cost).Edge(v, u, cost)
}

// Link adds both directions weighted by Euclidean distance, the way a mesh
// loader does.
func (b *Builder) Link(u, v graph.NodeID) *Builder {
	b.t.Helper()
	return b.BiEdge(u, v, b.g.Position(u).Distance(b.g.Position(v)))
}

// Build freezes and returns the graph.
func (b *Builder) Build() *graph.Graph {
	b.t.Helper()
	require.NoError(b.t, b.g.Freeze())
	return b.g
}

// Square returns the unit square 0(0,0) 1(1,0) 2(1,1) 3(0,1) with
// bidirectional unit edges around the perimeter. The two routes from 0 to
// 2 both cost 2.
func Square(t testing.TB) *graph.Graph {
	t.Helper()
	return New(t).
		Node(0, 0, 0, 0).Node(1, 1, 0, 0).Node(2, 1, 1, 0).Node(3, 0, 1, 0).
		BiEdge(0, 1, 1).BiEdge(1, 2, 1).BiEdge(2, 3, 1).BiEdge(3, 0, 1).
		Build()
}

// TwoClusters returns two internally connected triangles with no edge
// between them: nodes 0-2 near the origin and nodes 3-5 near x=100.
func TwoClusters(t testing.TB) *graph.Graph {
	t.Helper()
	return New(t).
		Node(0, 0, 0, 0).Node(1, 1, 0, 0).Node(2, 0, 1, 0).
		Node(3, 100, 0, 0).Node(4, 101, 0, 0).Node(5, 100, 1, 0).
		Link(0, 1).Link(1, 2).Link(2, 0).
		Link(3, 4).Link(4, 5).Link(5, 3).
		Build()
}

// Grid returns a w x h grid on the XY plane with unit spacing and
// bidirectional unit edges between 4-neighbors. Node id is y*w + x.
func Grid(t testing.TB, w, h int) *graph.Graph {
	t.Helper()
	b := New(t)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			b.Node(graph.NodeID(y*w+x), float64(x), float64(y), 0)
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			id := graph.NodeID(y*w + x)
			if x+1 < w {
				b.BiEdge(id, id+1, 1)
			}
			if y+1 < h {
				b.BiEdge(id, id+graph.NodeID(w), 1)
			}
		}
	}
	return b.Build()
}

// Random returns a graph of n nodes scattered in a 10x10x10 box with m
// random directed edges. Edge costs are the Euclidean distance times a
// factor in [1, 2), which keeps the Euclidean heuristic admissible and
// consistent. When symmetric is true every edge gets a reverse of equal cost.
func Random(t testing.TB, r *rand.Rand, n, m int, symmetric bool) *graph.Graph {
	t.Helper()
	b := New(t)
	for i := 0; i < n; i++ {
		b.Node(graph.NodeID(i), r.Float64()*10, r.Float64()*10, r.Float64()*10)
	}
	for i := 0; i < m; i++ {
		u := graph.NodeID(r.IntN(n))
		v := graph.NodeID(r.IntN(n))
		if u == v {
			continue
		}
		cost := b.g.Position(u).Distance(b.g.Position(v)) * (1 + r.Float64())
		if symmetric {
			b.BiEdge(u, v, cost)
		} else {
			b.Edge(u, v, cost)
		}
	}
	return b.Build()
}
