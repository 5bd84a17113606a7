// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph holds the navigation-mesh graph that every path query runs on.
//
// A Graph is a directed, weighted graph whose nodes carry a 3D position. It is
// assembled once by a mesh loader, frozen, and then shared by any number of
// searching goroutines.
//
// # Thread Safety
//
// During the building phase a Graph is NOT safe for concurrent use. After
// Freeze is called the graph is read-only and all read methods may be called
// from any number of goroutines without synchronization.
//
// # Lifecycle
//
//  1. Create with NewGraph.
//  2. Add nodes with AddNode and edges with AddEdge.
//  3. Call Freeze once; it builds the incoming adjacency and checks edge targets.
//  4. Hand the frozen graph to search engines and services.
package graph

import "errors"

var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrGraphNotFrozen is returned when a reader needs the incoming adjacency
	// that only Freeze builds.
	ErrGraphNotFrozen = errors.New("graph is not frozen")

	// ErrNodeNotFound is returned when an edge references a missing node.
	ErrNodeNotFound = errors.New("node not found")

	// ErrNegativeCost is returned when an edge cost is below zero.
	ErrNegativeCost = errors.New("edge cost must not be negative")
)
