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
)

// NodeID identifies a node. IDs are expected to be dense (0..n-1) because
// they index flat per-node arrays in the graph and in search scratch state.
type NodeID int

// InvalidNode marks an unset back-pointer or a missing node.
const InvalidNode NodeID = -1

// GraphState represents the lifecycle state of a graph.
type GraphState int

const (
	// GraphStateBuilding indicates the graph is being constructed.
	GraphStateBuilding GraphState = iota

	// GraphStateReadOnly indicates the graph is frozen and immutable.
	GraphStateReadOnly
)

// String returns the string representation of the GraphState.
func (s GraphState) String() string {
	switch s {
	case GraphStateBuilding:
		return "building"
	case GraphStateReadOnly:
		return "readonly"
	default:
		return "unknown"
	}
}

// Vec3 is a point in 3D space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Distance returns the Euclidean distance between v and o.
func (v Vec3) Distance(o Vec3) float64 {
	dx, dy, dz := v.X-o.X, v.Y-o.Y, v.Z-o.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Lerp returns the point a fraction t of the way from v to o.
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	return Vec3{
		X: v.X + (o.X-v.X)*t,
		Y: v.Y + (o.Y-v.Y)*t,
		Z: v.Z + (o.Z-v.Z)*t,
	}
}

// String renders the vector as "(x, y, z)".
func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Node is a walkable location in the mesh.
type Node struct {
	ID  NodeID `json:"id"`
	Pos Vec3   `json:"pos"`
}

// Edge is a directed, weighted connection.
//
// In outgoing lists To is the head of the edge. In incoming lists (see
// Graph.Incoming) To holds the tail, so a backward search can follow it the
// same way a forward search follows outgoing edges.
type Edge struct {
	To   NodeID  `json:"to"`
	Cost float64 `json:"cost"`
}

// GraphOptions configures graph construction.
type GraphOptions struct {
	// CapacityHint preallocates per-node arrays. Zero means no hint.
	CapacityHint int

	// SymmetryTolerance is the largest cost difference at which an edge and
	// its reverse are still considered equal by Freeze. Default 1e-9.
	SymmetryTolerance float64
}

// GraphOption is a functional option for configuring graph construction.
type GraphOption func(*GraphOptions)

// WithCapacityHint preallocates storage for n nodes.
func WithCapacityHint(n int) GraphOption {
	return func(o *GraphOptions) {
		o.CapacityHint = n
	}
}

// WithSymmetryTolerance sets the cost tolerance used by symmetry detection.
func WithSymmetryTolerance(tol float64) GraphOption {
	return func(o *GraphOptions) {
		o.SymmetryTolerance = tol
	}
}

func defaultGraphOptions() GraphOptions {
	return GraphOptions{SymmetryTolerance: 1e-9}
}
