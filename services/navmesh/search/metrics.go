// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"context"
	"log/slog"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("repath.search")

var (
	// searchTotal counts executed searches by algorithm and outcome.
	searchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "navmesh_search_total",
		Help: "Total path searches executed (cache misses) by result",
	}, []string{"algorithm", "result"})

	// searchDuration tracks wall time of executed searches.
	searchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "navmesh_search_duration_seconds",
		Help:    "Path search duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 2, 18), // 10us to ~1.3s
	}, []string{"algorithm"})

	// searchExpanded tracks how many nodes a search settled.
	searchExpanded = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "navmesh_search_nodes_expanded",
		Help:    "Nodes expanded per path search",
		Buckets: prometheus.ExponentialBuckets(1, 4, 12),
	}, []string{"algorithm"})
)

func startSearchSpan(ctx context.Context, alg Algorithm, start, goal graph.NodeID) (context.Context, trace.Span) {
	return tracer.Start(ctx, "search.Engine."+string(alg),
		trace.WithAttributes(
			attribute.Int("search.start", int(start)),
			attribute.Int("search.goal", int(goal)),
		),
	)
}

func setSearchSpanResult(span trace.Span, p *graph.Path, expanded int) {
	span.SetAttributes(
		attribute.Bool("search.found", p != nil),
		attribute.Int("search.expanded", expanded),
		attribute.Int("search.path_len", p.Len()),
	)
}

func recordSearch(ctx context.Context, alg Algorithm, p *graph.Path, expanded int, began time.Time) {
	result := "found"
	if p == nil {
		result = "no_path"
	}
	elapsed := sinceSeconds(began)
	searchTotal.WithLabelValues(string(alg), result).Inc()
	searchDuration.WithLabelValues(string(alg)).Observe(elapsed)
	searchExpanded.WithLabelValues(string(alg)).Observe(float64(expanded))

	slog.DebugContext(ctx, "path search completed",
		slog.String("algorithm", string(alg)),
		slog.String("result", result),
		slog.Int("expanded", expanded),
		slog.Int("path_len", p.Len()),
		slog.Float64("seconds", elapsed),
	)
}
