// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph_test

import (
	"testing"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/AleutianAI/RePath/services/navmesh/graph/graphtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPath(t *testing.T) {
	g := graphtest.Grid(t, 3, 1)

	p := graph.NewPath(g, []graph.NodeID{0, 1, 2}, []float64{1, 1}, time.Second)

	require.Equal(t, 3, p.Len())
	assert.Equal(t, 2.0, p.Cost)
	assert.Equal(t, []time.Duration{0, time.Second, 2 * time.Second},
		[]time.Duration{p.Waypoints[0].Offset, p.Waypoints[1].Offset, p.Waypoints[2].Offset})
	assert.Equal(t, graph.NodeID(0), p.Start())
	assert.Equal(t, graph.NodeID(2), p.Goal())
	assert.Equal(t, 2*time.Second, p.Duration())
	assert.Equal(t, graph.Vec3{X: 2}, p.Waypoints[2].Node.Pos)

	single := graph.NewPath(g, []graph.NodeID{1}, nil, time.Second)
	assert.Equal(t, 1, single.Len())
	assert.Zero(t, single.Cost)
}

func TestPath_Clone(t *testing.T) {
	g := graphtest.Grid(t, 2, 1)
	p := graph.NewPath(g, []graph.NodeID{0, 1}, []float64{1}, time.Millisecond)

	c := p.Clone()
	c.Waypoints[0].Node.ID = 99

	assert.Equal(t, graph.NodeID(0), p.Start())
	assert.Nil(t, (*graph.Path)(nil).Clone())
}

func TestPath_Reverse(t *testing.T) {
	g := graphtest.Grid(t, 3, 1)
	p := graph.NewPath(g, []graph.NodeID{0, 1, 2}, []float64{1, 3}, time.Second)

	r := p.Reverse(time.Second)

	assert.Equal(t, []graph.NodeID{2, 1, 0}, r.NodeIDs())
	assert.Equal(t, 4.0, r.Cost)
	assert.Equal(t, 3*time.Second, r.Waypoints[1].Offset)
	assert.Equal(t, 4*time.Second, r.Duration())
}

func TestConcat(t *testing.T) {
	g := graphtest.Grid(t, 5, 1)
	a := graph.NewPath(g, []graph.NodeID{0, 1, 2}, []float64{1, 1}, time.Second)
	b := graph.NewPath(g, []graph.NodeID{2, 3}, []float64{1}, time.Second)
	c := graph.NewPath(g, []graph.NodeID{3}, nil, time.Second)
	d := graph.NewPath(g, []graph.NodeID{3, 4}, []float64{2}, time.Second)

	out := graph.Concat(a, b, c, d)

	assert.Equal(t, []graph.NodeID{0, 1, 2, 3, 4}, out.NodeIDs())
	assert.Equal(t, 5.0, out.Cost)
	assert.Equal(t, 5*time.Second, out.Duration())
	assert.Equal(t, 3.0, out.Waypoints[3].Distance)

	ids := out.NodeIDs()
	for i := 1; i < len(ids); i++ {
		assert.NotEqual(t, ids[i-1], ids[i], "junction node repeated at %d", i)
	}
}
