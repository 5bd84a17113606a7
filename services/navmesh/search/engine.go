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
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

// PathCache stores search results keyed by (start, goal). A nil path means
// the goal was proven unreachable. *cache.Cache satisfies it.
type PathCache interface {
	Get(ctx context.Context, k cache.Key) (*graph.Path, bool)
	Put(k cache.Key, p *graph.Path)
}

// Engine runs path searches over one frozen graph and one cache.
//
// Thread Safety: Safe for concurrent use.
type Engine struct {
	graph   *graph.Graph
	cache   PathCache
	options EngineOptions

	searches atomic.Int64
}

// NewEngine creates a search engine.
//
// Inputs:
//
//	g - A frozen graph.
//	c - The result cache shared by every caller of this engine.
//	opts - Functional options.
//
// Errors:
//
//	graph.ErrGraphNotFrozen - g has not been frozen
//	ErrNilCache - c is nil
//	ErrUnknownAlgorithm, ErrUnknownMeetingRule - invalid options
func NewEngine(g *graph.Graph, c PathCache, opts ...EngineOption) (*Engine, error) {
	if g == nil || !g.IsFrozen() {
		return nil, graph.ErrGraphNotFrozen
	}
	if c == nil {
		return nil, ErrNilCache
	}

	options := defaultEngineOptions()
	for _, opt := range opts {
		opt(&options)
	}
	if _, err := ParseAlgorithm(string(options.Algorithm)); err != nil {
		return nil, err
	}
	if _, err := ParseMeetingRule(string(options.Meeting)); err != nil {
		return nil, err
	}

	return &Engine{graph: g, cache: c, options: options}, nil
}

// Graph returns the graph the engine searches.
func (e *Engine) Graph() *graph.Graph {
	return e.graph
}

// Options returns the engine configuration.
func (e *Engine) Options() EngineOptions {
	return e.options
}

// Searches returns how many searches actually ran, i.e. lookups that were
// not answered by the cache.
func (e *Engine) Searches() int64 {
	return e.searches.Load()
}

// Search finds a path with the configured algorithm.
//
// Outputs:
//
//	*graph.Path - The path, or nil when goal is unreachable from start.
//	bool - True if a path exists.
func (e *Engine) Search(ctx context.Context, start, goal graph.NodeID) (*graph.Path, bool) {
	if e.options.Algorithm == AlgorithmBidirectional {
		return e.Bidirectional(ctx, start, goal)
	}
	return e.AStar(ctx, start, goal)
}

// lookup answers from the cache. The second result reports a hit; the
// first is then the cached path (nil for a cached "no path").
func (e *Engine) lookup(ctx context.Context, start, goal graph.NodeID) (*graph.Path, bool) {
	return e.cache.Get(ctx, cache.Key{Start: start, Goal: goal})
}

// assemble turns a forward chain (goal end first, as produced by
// scratch.chain) and an optional backward chain (meeting node first) into
// a start-to-goal path.
func (e *Engine) assemble(fwdIDs []graph.NodeID, fwdSteps []float64, bwdIDs []graph.NodeID, bwdSteps []float64) *graph.Path {
	ids := slices.Clone(fwdIDs)
	steps := slices.Clone(fwdSteps)
	slices.Reverse(ids)
	slices.Reverse(steps)

	if len(bwdIDs) > 1 {
		ids = append(ids, bwdIDs[1:]...)
		steps = append(steps, bwdSteps...)
	}
	return graph.NewPath(e.graph, ids, steps, e.options.TimePerUnit)
}

func (e *Engine) String() string {
	return fmt.Sprintf("search.Engine{algorithm=%s meeting=%s nodes=%d}",
		e.options.Algorithm, e.options.Meeting, e.graph.NodeCount())
}

func sinceSeconds(t time.Time) float64 {
	return time.Since(t).Seconds()
}
