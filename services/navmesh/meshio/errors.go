// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package meshio loads navigation meshes from Wavefront OBJ files and
// watches mesh files for changes.
//
// Every `v` line becomes a node, numbered from 0 in file order. Every face
// is fan-triangulated and each triangle a, b, c contributes the directed
// edges a->b, b->c and c->a weighted by Euclidean distance.
package meshio

import "errors"

var (
	// ErrMalformedLine is returned for a `v` or `f` line that cannot be parsed.
	ErrMalformedLine = errors.New("malformed OBJ line")

	// ErrFaceIndex is returned when a face references a vertex that does
	// not exist.
	ErrFaceIndex = errors.New("face references unknown vertex")
)
