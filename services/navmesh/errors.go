// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package navmesh is the path service: it answers "how do I get from point A
// to point B" over a loaded navigation mesh.
//
// Query points are arbitrary 3D positions. Each is snapped to its nearest
// mesh node, the node pair is solved by the search engine through a shared
// cache, and the result is returned as timed waypoints. Long queries can be
// split into segments that are solved in parallel and stitched together.
//
// # Thread Safety
//
// Service methods are safe for concurrent use. The graph, cache, and engine
// form one immutable snapshot that Reload replaces atomically; queries in
// flight finish on the snapshot they started with.
package navmesh

import "errors"

var (
	// ErrEmptyGraph is returned when the mesh has no nodes to snap to.
	ErrEmptyGraph = errors.New("navmesh has no nodes")

	// ErrNoPath is returned when the goal node is unreachable from the
	// start node.
	ErrNoPath = errors.New("no path between points")

	// ErrSegmentFailed is returned by segmented queries when any segment
	// has no path. It wraps the segment's own error.
	ErrSegmentFailed = errors.New("path segment failed")
)
