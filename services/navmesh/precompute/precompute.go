// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package precompute warms the path cache at startup by solving randomly
// sampled nearby node pairs on a worker pool.
package precompute

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"runtime"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("repath.precompute")

// progressEvery controls how often progress is logged, in completed pairs.
const progressEvery = 100

// Searcher solves one query and records the result in the shared cache.
// *search.Engine satisfies it.
type Searcher interface {
	Search(ctx context.Context, start, goal graph.NodeID) (*graph.Path, bool)
}

// Config controls sampling and parallelism.
type Config struct {
	// Pairs is how many (start, goal) samples to draw.
	Pairs int

	// Radius bounds the distance between a sampled start and goal.
	Radius float64

	// Workers is the pool size. Zero or less means GOMAXPROCS.
	Workers int

	// Seed makes sampling reproducible. Zero picks a random seed.
	Seed uint64
}

// Report summarizes a precompute run.
type Report struct {
	// Requested is Config.Pairs.
	Requested int `json:"requested"`

	// Dispatched is how many pairs were handed to the worker pool.
	Dispatched int `json:"dispatched"`

	// Skipped counts samples whose start had no other node within Radius.
	Skipped int `json:"skipped"`

	// Found counts dispatched pairs for which a path exists.
	Found int64 `json:"found"`

	// Duration is the wall time of the run.
	Duration time.Duration `json:"duration"`
}

// Scheduler samples node pairs and solves them in parallel.
type Scheduler struct {
	graph    *graph.Graph
	searcher Searcher
	config   Config
}

// NewScheduler creates a scheduler. The graph must be the one searcher
// operates on.
func NewScheduler(g *graph.Graph, s Searcher, cfg Config) *Scheduler {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.Seed == 0 {
		cfg.Seed = rand.Uint64()
	}
	return &Scheduler{graph: g, searcher: s, config: cfg}
}

// Run draws Config.Pairs samples and solves them on the worker pool.
//
// Description:
//
//	Each sample picks a uniformly random start node and a uniformly random
//	goal among the other nodes within Radius of it. Samples with no such
//	goal are skipped. Every dispatched pair is solved through the
//	Searcher, which caches the outcome; a pair with no path is a normal
//	result, not an error. Run returns once every dispatched pair is done.
//
// Inputs:
//
//	ctx - Cancelling ctx stops dispatching new pairs. Pairs already on the
//	      pool run to completion.
//
// Outputs:
//
//	Report - Counts and wall time, also when ctx was cancelled.
//	error - ctx.Err() if dispatching was cut short.
func (s *Scheduler) Run(ctx context.Context) (Report, error) {
	ctx, span := tracer.Start(ctx, "precompute.Scheduler.Run",
		trace.WithAttributes(
			attribute.Int("precompute.pairs", s.config.Pairs),
			attribute.Float64("precompute.radius", s.config.Radius),
			attribute.Int("precompute.workers", s.config.Workers),
		),
	)
	defer span.End()

	began := time.Now()
	report := Report{Requested: s.config.Pairs}
	rng := rand.New(rand.NewPCG(s.config.Seed, s.config.Seed^0x9e3779b97f4a7c15))

	var (
		pool  errgroup.Group
		found atomic.Int64
		done  atomic.Int64
	)
	pool.SetLimit(s.config.Workers)

	var runErr error
	for i := 0; i < s.config.Pairs; i++ {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		start, goal, ok := s.sample(rng)
		if !ok {
			report.Skipped++
			continue
		}
		report.Dispatched++

		pool.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("panic in precompute worker",
						slog.Int("start", int(start)),
						slog.Int("goal", int(goal)),
						slog.Any("panic", r),
						slog.String("stack", string(debug.Stack())),
					)
				}
			}()

			if _, ok := s.searcher.Search(ctx, start, goal); ok {
				found.Add(1)
			}
			if n := done.Add(1); n%progressEvery == 0 {
				slog.Debug("precompute progress",
					slog.Int64("completed", n),
					slog.Int("requested", s.config.Pairs),
				)
			}
			return nil
		})
	}
	_ = pool.Wait()

	report.Found = found.Load()
	report.Duration = time.Since(began)

	span.SetAttributes(
		attribute.Int("precompute.dispatched", report.Dispatched),
		attribute.Int("precompute.skipped", report.Skipped),
		attribute.Int64("precompute.found", report.Found),
	)
	if runErr != nil {
		span.RecordError(runErr)
		span.SetStatus(codes.Error, "precompute interrupted")
		return report, fmt.Errorf("precompute interrupted after %d pairs: %w", report.Dispatched, runErr)
	}

	slog.Info("precompute complete",
		slog.Int("requested", report.Requested),
		slog.Int("dispatched", report.Dispatched),
		slog.Int("skipped", report.Skipped),
		slog.Int64("found", report.Found),
		slog.Duration("duration", report.Duration),
	)
	return report, nil
}

// sample draws one (start, goal) pair. Returns false on an empty graph or
// when no other node lies within the radius of start.
func (s *Scheduler) sample(rng *rand.Rand) (graph.NodeID, graph.NodeID, bool) {
	start, ok := s.graph.RandomNode(rng)
	if !ok {
		return graph.InvalidNode, graph.InvalidNode, false
	}

	nearby := s.graph.NodesWithinRadius(s.graph.Position(start), s.config.Radius)
	candidates := nearby[:0]
	for _, id := range nearby {
		if id != start {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return start, graph.InvalidNode, false
	}
	return start, candidates[rng.IntN(len(candidates))], true
}
