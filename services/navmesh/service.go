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
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/AleutianAI/RePath/services/navmesh/precompute"
	"github.com/AleutianAI/RePath/services/navmesh/search"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// ServiceConfig configures a Service.
type ServiceConfig struct {
	// CachePolicy selects the cache backend.
	CachePolicy cache.Policy

	// CacheCapacity bounds the LRU backend. Must be > 0 for PolicyLRU.
	CacheCapacity int

	// Algorithm and Meeting configure the search engine.
	Algorithm search.Algorithm
	Meeting   search.MeetingRule

	// TimePerUnit scales edge cost into waypoint offsets.
	TimePerUnit time.Duration

	// Workers sizes the precompute and segmented-query pools.
	Workers int

	// Precompute enables cache warming.
	Precompute       bool
	PrecomputePairs  int
	PrecomputeRadius float64
	PrecomputeSeed   uint64

	// DeferWarmup skips precompute in NewService and Reload. The caller
	// is then expected to call Warm, typically in a goroutine.
	DeferWarmup bool
}

// DefaultServiceConfig returns the defaults used when no configuration file
// is present.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		CachePolicy:      cache.PolicyLRU,
		CacheCapacity:    100_000,
		Algorithm:        search.AlgorithmAStar,
		Meeting:          search.MeetingBounded,
		TimePerUnit:      time.Second,
		Workers:          runtime.GOMAXPROCS(0),
		Precompute:       true,
		PrecomputePairs:  1000,
		PrecomputeRadius: 50,
	}
}

// world is one immutable snapshot of everything a query touches.
type world struct {
	generation uint64
	graph      *graph.Graph
	cache      *cache.Cache
	engine     *search.Engine
}

// Service answers path queries between 3D points.
//
// Thread Safety: Safe for concurrent use.
type Service struct {
	config  ServiceConfig
	current atomic.Pointer[world]
	nextGen atomic.Uint64
	flight  singleflight.Group
	warmup  warmupState

	mu         sync.Mutex
	lastReport precompute.Report

	queries    atomic.Int64
	queryNanos atomic.Int64
}

// NewService builds the cache and search engine for g and, unless disabled
// or deferred, warms the cache before returning.
//
// Inputs:
//
//	ctx - Cancelling ctx cuts precompute short.
//	g - A frozen graph.
//	cfg - Service configuration.
//
// Errors:
//
//	cache.ErrInvalidCapacity - LRU policy with capacity <= 0
//	graph.ErrGraphNotFrozen - g is not frozen
//	context errors - precompute was interrupted
func NewService(ctx context.Context, g *graph.Graph, cfg ServiceConfig) (*Service, error) {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.TimePerUnit <= 0 {
		cfg.TimePerUnit = time.Second
	}

	s := &Service{config: cfg}
	w, err := s.buildWorld(g)
	if err != nil {
		return nil, err
	}
	s.current.Store(w)

	if err := s.maybeWarm(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) buildWorld(g *graph.Graph) (*world, error) {
	c, err := cache.New(s.config.CachePolicy, s.config.CacheCapacity)
	if err != nil {
		return nil, fmt.Errorf("creating path cache: %w", err)
	}
	e, err := search.NewEngine(g, c,
		search.WithAlgorithm(s.config.Algorithm),
		search.WithMeetingRule(s.config.Meeting),
		search.WithTimePerUnit(s.config.TimePerUnit),
	)
	if err != nil {
		return nil, fmt.Errorf("creating search engine: %w", err)
	}
	return &world{
		generation: s.nextGen.Add(1),
		graph:      g,
		cache:      c,
		engine:     e,
	}, nil
}

func (s *Service) maybeWarm(ctx context.Context) error {
	if !s.config.Precompute {
		s.warmup.markComplete()
		return nil
	}
	if s.config.DeferWarmup {
		return nil
	}
	_, err := s.Warm(ctx)
	return err
}

// Warm runs the precompute scheduler against the current snapshot.
//
// Description:
//
//	The service is marked ready when Warm returns, whether or not precompute
//	completed. Queries are served throughout; they simply miss the cache
//	more often until warming ends. With precompute disabled Warm only marks
//	the service ready and returns an empty report.
func (s *Service) Warm(ctx context.Context) (precompute.Report, error) {
	if !s.config.Precompute {
		s.warmup.markComplete()
		return precompute.Report{}, nil
	}

	w := s.current.Load()
	sched := precompute.NewScheduler(w.graph, w.engine, precompute.Config{
		Pairs:   s.config.PrecomputePairs,
		Radius:  s.config.PrecomputeRadius,
		Workers: s.config.Workers,
		Seed:    s.config.PrecomputeSeed,
	})

	report, err := sched.Run(ctx)

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()
	recordPrecompute(ctx, report)

	if s.current.Load() == w {
		s.warmup.markComplete()
	}
	if err != nil {
		slog.Warn("precompute did not finish", slog.String("error", err.Error()))
	}
	return report, err
}

// Ready reports whether cache warming has finished for the current mesh.
func (s *Service) Ready() bool {
	return s.warmup.isComplete()
}

// Reload swaps in a new graph with a fresh cache and engine.
//
// Description:
//
//	Queries already running finish against the previous snapshot. If
//	precompute is enabled and not deferred the new cache is warmed before
//	Reload returns; until then Ready reports false.
func (s *Service) Reload(ctx context.Context, g *graph.Graph) error {
	w, err := s.buildWorld(g)
	if err != nil {
		return err
	}
	if s.config.Precompute {
		s.warmup.reset()
	}
	s.current.Store(w)

	slog.Info("navmesh reloaded",
		slog.Uint64("generation", w.generation),
		slog.Int("nodes", g.NodeCount()),
		slog.Int("edges", g.EdgeCount()),
	)
	return s.maybeWarm(ctx)
}

// Graph returns the graph of the current snapshot.
func (s *Service) Graph() *graph.Graph {
	return s.current.Load().graph
}

// Searches returns how many searches the current engine actually executed.
func (s *Service) Searches() int64 {
	return s.current.Load().engine.Searches()
}

// NearestNode snaps p to the closest mesh node.
func (s *Service) NearestNode(p graph.Vec3) (graph.Node, error) {
	g := s.current.Load().graph
	id, ok := g.NearestNode(p)
	if !ok {
		return graph.Node{}, ErrEmptyGraph
	}
	n, _ := g.Node(id)
	return n, nil
}

// FindPath returns a least-cost path between the mesh nodes nearest to
// from and to.
//
// Description:
//
//	Both points are snapped to their nearest node. The node pair is then
//	served from the cache or searched with the configured algorithm.
//	Identical queries running at the same time share one search.
//
// Outputs:
//
//	*graph.Path - Waypoints from the start node to the goal node. The
//	              caller owns the returned value.
//	error - ErrEmptyGraph or ErrNoPath (wrapped with the node pair).
func (s *Service) FindPath(ctx context.Context, from, to graph.Vec3) (*graph.Path, error) {
	ctx, span := tracer.Start(ctx, "navmesh.Service.FindPath")
	defer span.End()

	began := time.Now()
	defer s.observeQuery(ctx, "single", began)

	p, err := s.route(ctx, s.current.Load(), from, to)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "find path failed")
		return nil, err
	}
	span.SetAttributes(attribute.Int("path.len", p.Len()), attribute.Float64("path.cost", p.Cost))
	return p, nil
}

// route snaps, deduplicates and solves one point-to-point query on w.
func (s *Service) route(ctx context.Context, w *world, from, to graph.Vec3) (*graph.Path, error) {
	start, ok := w.graph.NearestNode(from)
	if !ok {
		return nil, ErrEmptyGraph
	}
	goal, ok := w.graph.NearestNode(to)
	if !ok {
		return nil, ErrEmptyGraph
	}

	trace.SpanFromContext(ctx).SetAttributes(
		attribute.Int("path.start", int(start)),
		attribute.Int("path.goal", int(goal)),
	)

	key := fmt.Sprintf("%d:%d:%d", w.generation, start, goal)
	v, _, shared := s.flight.Do(key, func() (interface{}, error) {
		p, _ := w.engine.Search(ctx, start, goal)
		return p, nil
	})

	p, _ := v.(*graph.Path)
	if p == nil {
		return nil, fmt.Errorf("%w: node %d to node %d", ErrNoPath, start, goal)
	}
	if shared {
		p = p.Clone()
	}
	return p, nil
}

func (s *Service) observeQuery(ctx context.Context, kind string, began time.Time) {
	elapsed := time.Since(began)
	s.queries.Add(1)
	s.queryNanos.Add(int64(elapsed))
	recordQuery(ctx, kind, elapsed)
}

// RunMetrics are the figures exported to the external metrics sink.
type RunMetrics struct {
	PrecomputeTime   time.Duration `json:"precompute_time"`
	PathsPrecomputed int64         `json:"paths_precomputed"`
	QueryTime        time.Duration `json:"query_time"`
	Queries          int64         `json:"queries"`
}

// Metrics returns cumulative run metrics since the service was created.
func (s *Service) Metrics() RunMetrics {
	s.mu.Lock()
	report := s.lastReport
	s.mu.Unlock()
	return RunMetrics{
		PrecomputeTime:   report.Duration,
		PathsPrecomputed: report.Found,
		QueryTime:        time.Duration(s.queryNanos.Load()),
		Queries:          s.queries.Load(),
	}
}

// Stats is a snapshot of service state for diagnostics.
type Stats struct {
	Generation uint64            `json:"generation"`
	Ready      bool              `json:"ready"`
	Algorithm  search.Algorithm  `json:"algorithm"`
	Graph      graph.GraphStats  `json:"graph"`
	Cache      cache.Stats       `json:"cache"`
	Searches   int64             `json:"searches"`
	Precompute precompute.Report `json:"precompute"`
	Metrics    RunMetrics        `json:"metrics"`
}

// Stats returns a snapshot of the current state.
func (s *Service) Stats() Stats {
	w := s.current.Load()
	s.mu.Lock()
	report := s.lastReport
	s.mu.Unlock()
	return Stats{
		Generation: w.generation,
		Ready:      s.Ready(),
		Algorithm:  w.engine.Options().Algorithm,
		Graph:      w.graph.Stats(),
		Cache:      w.cache.Stats(),
		Searches:   w.engine.Searches(),
		Precompute: report,
		Metrics:    s.Metrics(),
	}
}
