// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package navmesh

import "github.com/AleutianAI/RePath/services/navmesh/graph"

// MaxSegments caps the segment count accepted over HTTP.
const MaxSegments = 256

// PathRequest is the request body for POST /v1/navmesh/path.
type PathRequest struct {
	// Start is the query origin in mesh space.
	Start *graph.Vec3 `json:"start" binding:"required"`

	// End is the query destination in mesh space.
	End *graph.Vec3 `json:"end" binding:"required"`

	// Segments splits the query into parallel sub-queries when > 1.
	Segments int `json:"segments,omitempty" binding:"omitempty,min=1,max=256"`
}

// PathResponse is the response body for POST /v1/navmesh/path.
type PathResponse struct {
	RequestID string      `json:"request_id"`
	Segments  int         `json:"segments"`
	Path      *graph.Path `json:"path"`
	ElapsedMs int64       `json:"elapsed_ms"`
}

// NearestResponse is the response body for GET /v1/navmesh/nearest.
type NearestResponse struct {
	Node     graph.Node `json:"node"`
	Distance float64    `json:"distance"`
}

// ErrorResponse is returned for all API errors.
type ErrorResponse struct {
	// Error is the error message.
	Error string `json:"error"`

	// Code is the error code (optional).
	Code string `json:"code,omitempty"`

	// Details provides additional error context (optional).
	Details string `json:"details,omitempty"`
}
