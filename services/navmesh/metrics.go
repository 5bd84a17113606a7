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
	"context"
	"sync"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/precompute"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level tracer and meter for service operations.
var (
	tracer = otel.Tracer("repath.navmesh")
	meter  = otel.Meter("repath.navmesh")
)

var (
	queryLatency      metric.Float64Histogram
	precomputeLatency metric.Float64Histogram
	pathsPrecomputed  metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		queryLatency, err = meter.Float64Histogram(
			"navmesh_query_duration_seconds",
			metric.WithDescription("Wall time of path service queries"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		precomputeLatency, err = meter.Float64Histogram(
			"navmesh_precompute_duration_seconds",
			metric.WithDescription("Wall time of cache precompute runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		pathsPrecomputed, err = meter.Int64Counter(
			"navmesh_paths_precomputed_total",
			metric.WithDescription("Paths found during cache precompute"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

func recordQuery(ctx context.Context, kind string, d time.Duration) {
	if err := initMetrics(); err != nil {
		return
	}
	queryLatency.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("query_type", kind)))
}

func recordPrecompute(ctx context.Context, r precompute.Report) {
	if err := initMetrics(); err != nil {
		return
	}
	precomputeLatency.Record(ctx, r.Duration.Seconds())
	pathsPrecomputed.Add(ctx, r.Found)
}
