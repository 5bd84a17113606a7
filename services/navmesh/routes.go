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
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RegisterRoutes registers the /v1/navmesh/* endpoints.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//	queryMiddleware - Applied to query endpoints only (e.g. RateLimit)
//
// Endpoints:
//
//	GET  /v1/navmesh/health - Liveness
//	GET  /v1/navmesh/ready - 503 until cache warming finishes
//	GET  /v1/navmesh/stats - Graph, cache and search counters
//	GET  /v1/navmesh/nearest - Nearest mesh node to a point
//	POST /v1/navmesh/path - Find a (optionally segmented) path
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers, queryMiddleware ...gin.HandlerFunc) {
	nm := rg.Group("/navmesh")
	{
		nm.GET("/health", handlers.HandleHealth)
		nm.GET("/ready", handlers.HandleReady)
		nm.GET("/stats", handlers.HandleStats)

		q := nm.Group("", queryMiddleware...)
		q.GET("/nearest", handlers.HandleNearest)
		q.POST("/path", handlers.HandleFindPath)
	}
}

// RateLimit rejects requests with 429 once limiter runs out of tokens.
func RateLimit(limiter *rate.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
