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

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/AleutianAI/RePath/services/navmesh/telemetry"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Handlers exposes a Service over HTTP.
type Handlers struct {
	svc *Service
}

// NewHandlers creates handlers for svc.
func NewHandlers(svc *Service) *Handlers {
	return &Handlers{svc: svc}
}

// HandleHealth handles GET /v1/navmesh/health.
func (h *Handlers) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// HandleReady handles GET /v1/navmesh/ready.
//
// Response:
//
//	200 OK: cache warming finished
//	503 Service Unavailable: still warming
func (h *Handlers) HandleReady(c *gin.Context) {
	if !h.svc.Ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "warming"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// HandleStats handles GET /v1/navmesh/stats.
func (h *Handlers) HandleStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Stats())
}

// HandleNearest handles GET /v1/navmesh/nearest?x=&y=&z=.
//
// Response:
//
//	200 OK: NearestResponse
//	400 Bad Request: missing, non-numeric or non-finite coordinate
//	503 Service Unavailable: mesh has no nodes
func (h *Handlers) HandleNearest(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := telemetry.LoggerWithTrace(c.Request.Context(), slog.Default()).With("request_id", requestID, "handler", "HandleNearest")

	var p graph.Vec3
	for _, axis := range []struct {
		name string
		dst  *float64
	}{{"x", &p.X}, {"y", &p.Y}, {"z", &p.Z}} {
		v, err := strconv.ParseFloat(c.Query(axis.name), 64)
		if err == nil && (math.IsNaN(v) || math.IsInf(v, 0)) {
			err = errors.New("coordinate is not finite")
		}
		if err != nil {
			logger.Warn("Invalid coordinate", "axis", axis.name, "error", err)
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   "query parameters x, y and z must be finite numbers",
				Code:    "INVALID_REQUEST",
				Details: axis.name,
			})
			return
		}
		*axis.dst = v
	}

	node, err := h.svc.NearestNode(p)
	if err != nil {
		status, code := errorStatus(err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}
	c.JSON(http.StatusOK, NearestResponse{Node: node, Distance: node.Pos.Distance(p)})
}

// HandleFindPath handles POST /v1/navmesh/path.
//
// Description:
//
//	Finds a path between two points. When segments > 1 the query is split
//	and solved in parallel.
//
// Request Body:
//
//	PathRequest
//
// Response:
//
//	200 OK: PathResponse
//	400 Bad Request: Validation error
//	404 Not Found: NO_PATH or SEGMENT_FAILED
//	503 Service Unavailable: EMPTY_GRAPH
func (h *Handlers) HandleFindPath(c *gin.Context) {
	requestID := getOrCreateRequestID(c)
	logger := telemetry.LoggerWithTrace(c.Request.Context(), slog.Default()).With("request_id", requestID, "handler", "HandleFindPath")

	var req PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request body",
			Code:    "INVALID_REQUEST",
			Details: err.Error(),
		})
		return
	}

	segments := max(req.Segments, 1)
	began := time.Now()
	path, err := h.svc.FindPathSegmented(c.Request.Context(), *req.Start, *req.End, segments)
	if err != nil {
		status, code := errorStatus(err)
		logger.Info("Path query failed", "code", code, "error", err)
		c.JSON(status, ErrorResponse{Error: err.Error(), Code: code})
		return
	}

	logger.Debug("Path found",
		"segments", segments,
		"waypoints", path.Len(),
		"cost", path.Cost)

	c.JSON(http.StatusOK, PathResponse{
		RequestID: requestID,
		Segments:  segments,
		Path:      path,
		ElapsedMs: time.Since(began).Milliseconds(),
	})
}

// errorStatus maps service errors to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrEmptyGraph):
		return http.StatusServiceUnavailable, "EMPTY_GRAPH"
	case errors.Is(err, ErrSegmentFailed):
		return http.StatusNotFound, "SEGMENT_FAILED"
	case errors.Is(err, ErrNoPath):
		return http.StatusNotFound, "NO_PATH"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// getOrCreateRequestID returns the caller's X-Request-ID or a new one, and
// echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
