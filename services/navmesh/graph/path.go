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

import "time"

// Waypoint is one node on a path together with the time at which an agent
// following the path reaches it.
type Waypoint struct {
	Node Node `json:"node"`

	// Offset is the cumulative edge cost from the path start, scaled by the
	// time-per-unit the path was built with.
	Offset time.Duration `json:"offset"`

	// Distance is the unscaled cumulative edge cost from the path start.
	Distance float64 `json:"distance"`
}

// Path is an ordered route from a start node to a goal node, both inclusive.
//
// Thread Safety:
//
//	Paths are treated as immutable once built. Callers that need to modify
//	one should Clone it first.
type Path struct {
	Waypoints []Waypoint `json:"waypoints"`

	// Cost is the sum of traversed edge costs.
	Cost float64 `json:"cost"`
}

// NewPath builds a path from node IDs and the cost of each traversed edge.
//
// Description:
//
//	steps[i] must be the cost of the edge ids[i] -> ids[i+1], so
//	len(steps) == len(ids)-1. A single-node path has no steps and cost 0.
//
// Inputs:
//
//	g - Graph that owns the nodes.
//	ids - Node sequence, start first.
//	steps - Per-edge costs.
//	perUnit - Duration one unit of cost takes.
func NewPath(g *Graph, ids []NodeID, steps []float64, perUnit time.Duration) *Path {
	p := &Path{Waypoints: make([]Waypoint, len(ids))}
	dist := 0.0
	for i, id := range ids {
		if i > 0 {
			dist += steps[i-1]
		}
		p.Waypoints[i] = Waypoint{
			Node:     Node{ID: id, Pos: g.positions[id]},
			Offset:   ScaleCost(dist, perUnit),
			Distance: dist,
		}
	}
	p.Cost = dist
	return p
}

// ScaleCost converts an edge cost into a duration.
func ScaleCost(cost float64, perUnit time.Duration) time.Duration {
	return time.Duration(cost * float64(perUnit))
}

// Len returns the number of waypoints.
func (p *Path) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Waypoints)
}

// Start returns the first node. The path must be non-empty.
func (p *Path) Start() NodeID {
	return p.Waypoints[0].Node.ID
}

// Goal returns the last node. The path must be non-empty.
func (p *Path) Goal() NodeID {
	return p.Waypoints[len(p.Waypoints)-1].Node.ID
}

// Duration returns the offset of the final waypoint.
func (p *Path) Duration() time.Duration {
	if p.Len() == 0 {
		return 0
	}
	return p.Waypoints[len(p.Waypoints)-1].Offset
}

// NodeIDs returns the node sequence.
func (p *Path) NodeIDs() []NodeID {
	ids := make([]NodeID, len(p.Waypoints))
	for i, w := range p.Waypoints {
		ids[i] = w.Node.ID
	}
	return ids
}

// Clone returns a deep copy. Clone of nil is nil.
func (p *Path) Clone() *Path {
	if p == nil {
		return nil
	}
	out := &Path{
		Waypoints: make([]Waypoint, len(p.Waypoints)),
		Cost:      p.Cost,
	}
	copy(out.Waypoints, p.Waypoints)
	return out
}

// Reverse returns the path walked from goal to start, assuming each edge
// has a reverse of equal cost. Offsets are rescaled with perUnit.
func (p *Path) Reverse(perUnit time.Duration) *Path {
	if p == nil {
		return nil
	}
	n := len(p.Waypoints)
	out := &Path{Waypoints: make([]Waypoint, n), Cost: p.Cost}
	for i := range p.Waypoints {
		src := p.Waypoints[n-1-i]
		dist := p.Cost - src.Distance
		out.Waypoints[i] = Waypoint{
			Node:     src.Node,
			Offset:   ScaleCost(dist, perUnit),
			Distance: dist,
		}
	}
	return out
}

// Concat stitches consecutive paths into one.
//
// Description:
//
//	Each path is appended in order. When a path starts on the node the
//	previous one ended on, that junction node is emitted once. Offsets and
//	distances of later paths are shifted by everything before them and
//	costs are summed. Nil or empty inputs are skipped.
func Concat(paths ...*Path) *Path {
	out := &Path{}
	var offset time.Duration
	var dist float64

	for _, p := range paths {
		if p.Len() == 0 {
			continue
		}
		wps := p.Waypoints
		if len(out.Waypoints) > 0 && out.Waypoints[len(out.Waypoints)-1].Node.ID == wps[0].Node.ID {
			wps = wps[1:]
		}
		for _, w := range wps {
			out.Waypoints = append(out.Waypoints, Waypoint{
				Node:     w.Node,
				Offset:   offset + w.Offset,
				Distance: dist + w.Distance,
			})
		}
		offset += p.Duration()
		dist += p.Cost
	}
	out.Cost = dist
	return out
}
