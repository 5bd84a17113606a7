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
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// FindPathSegmented splits a long query into n straight-line segments,
// solves them in parallel, and stitches the results.
//
// Description:
//
//	n-1 waypoints are placed at even fractions along the segment from
//	`from` to `to`. Each consecutive pair of points is solved exactly like
//	FindPath on the worker pool. All segments run to completion; there is
//	no early cancellation. If any segment fails the whole query fails.
//	Otherwise segments are joined in order, emitting each junction node
//	once. The stitched path need not be globally optimal.
//
// Inputs:
//
//	n - Segment count. n <= 1 behaves exactly like FindPath.
//
// Errors:
//
//	ErrEmptyGraph - Mesh has no nodes
//	ErrSegmentFailed - Wraps the first failing segment's error (ErrNoPath)
func (s *Service) FindPathSegmented(ctx context.Context, from, to graph.Vec3, n int) (*graph.Path, error) {
	if n <= 1 {
		return s.FindPath(ctx, from, to)
	}

	ctx, span := tracer.Start(ctx, "navmesh.Service.FindPathSegmented",
		trace.WithAttributes(attribute.Int("path.segments", n)),
	)
	defer span.End()

	began := time.Now()
	defer s.observeQuery(ctx, "segmented", began)

	w := s.current.Load()
	if w.graph.NodeCount() == 0 {
		return nil, ErrEmptyGraph
	}

	points := make([]graph.Vec3, n+1)
	for i := range points {
		points[i] = from.Lerp(to, float64(i)/float64(n))
	}
	points[0], points[n] = from, to

	paths := make([]*graph.Path, n)
	errs := make([]error, n)

	var pool errgroup.Group
	pool.SetLimit(s.config.Workers)
	for i := 0; i < n; i++ {
		pool.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic in path segment worker",
						slog.Int("segment", i),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
					errs[i] = fmt.Errorf("segment worker panicked: %v", r)
				}
			}()
			paths[i], errs[i] = s.route(ctx, w, points[i], points[i+1])
			return nil
		})
	}
	_ = pool.Wait()

	for i, err := range errs {
		if err != nil {
			err = fmt.Errorf("%w: segment %d of %d: %w", ErrSegmentFailed, i+1, n, err)
			span.RecordError(err)
			span.SetStatus(codes.Error, "segment failed")
			return nil, err
		}
	}

	p := graph.Concat(paths...)
	span.SetAttributes(attribute.Int("path.len", p.Len()), attribute.Float64("path.cost", p.Cost))
	return p, nil
}
