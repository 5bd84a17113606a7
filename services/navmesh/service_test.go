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
	"math"
	"sync"
	"testing"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/AleutianAI/RePath/services/navmesh/graph/graphtest"
	"github.com/AleutianAI/RePath/services/navmesh/precompute"
	"github.com/AleutianAI/RePath/services/navmesh/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() ServiceConfig {
	cfg := DefaultServiceConfig()
	cfg.Precompute = false
	cfg.CacheCapacity = 1024
	cfg.Workers = 4
	return cfg
}

func newTestService(t *testing.T, g *graph.Graph, mutate ...func(*ServiceConfig)) *Service {
	t.Helper()
	cfg := testConfig()
	for _, m := range mutate {
		m(&cfg)
	}
	svc, err := NewService(context.Background(), g, cfg)
	require.NoError(t, err)
	return svc
}

func pt(x, y, z float64) graph.Vec3 { return graph.Vec3{X: x, Y: y, Z: z} }

func TestNewService_InvalidCapacity(t *testing.T) {
	cfg := testConfig()
	cfg.CachePolicy = cache.PolicyLRU
	cfg.CacheCapacity = 0

	_, err := NewService(context.Background(), graphtest.Square(t), cfg)
	assert.ErrorIs(t, err, cache.ErrInvalidCapacity)
}

func TestFindPath_Square(t *testing.T) {
	for _, alg := range []search.Algorithm{search.AlgorithmAStar, search.AlgorithmBidirectional} {
		t.Run(string(alg), func(t *testing.T) {
			svc := newTestService(t, graphtest.Square(t), func(c *ServiceConfig) { c.Algorithm = alg })

			p, err := svc.FindPath(context.Background(), pt(0.1, -0.1, 0), pt(0.9, 1.2, 0))
			require.NoError(t, err)
			assert.Equal(t, 2.0, p.Cost)
			assert.Equal(t, graph.NodeID(0), p.Start())
			assert.Equal(t, graph.NodeID(2), p.Goal())
			assert.Contains(t, [][]graph.NodeID{{0, 1, 2}, {0, 3, 2}}, p.NodeIDs())
		})
	}
}

func TestFindPath_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, graphtest.Grid(t, 8, 8))

	first, err := svc.FindPath(ctx, pt(0, 0, 0), pt(7, 7, 0))
	require.NoError(t, err)
	second, err := svc.FindPath(ctx, pt(0.2, 0.1, 0), pt(6.9, 7.1, 0))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), svc.Searches(), "second query answered by cache")
}

func TestFindPath_DisconnectedCached(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, graphtest.TwoClusters(t))

	_, err := svc.FindPath(ctx, pt(0, 0, 0), pt(101, 0, 0))
	assert.ErrorIs(t, err, ErrNoPath)

	_, err = svc.FindPath(ctx, pt(0, 0, 0), pt(101, 0, 0))
	assert.ErrorIs(t, err, ErrNoPath)
	assert.Equal(t, int64(1), svc.Searches())
	assert.Equal(t, int64(1), svc.Stats().Cache.Hits)
}

func TestFindPath_EmptyGraph(t *testing.T) {
	svc := newTestService(t, graphtest.New(t).Build())

	_, err := svc.FindPath(context.Background(), pt(0, 0, 0), pt(1, 1, 1))
	assert.ErrorIs(t, err, ErrEmptyGraph)

	_, err = svc.FindPathSegmented(context.Background(), pt(0, 0, 0), pt(1, 1, 1), 4)
	assert.ErrorIs(t, err, ErrEmptyGraph)

	_, err = svc.NearestNode(pt(0, 0, 0))
	assert.ErrorIs(t, err, ErrEmptyGraph)
}

func TestFindPath_ConcurrentIdenticalQueries(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, graphtest.Grid(t, 20, 20))

	var wg sync.WaitGroup
	results := make([]*graph.Path, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := svc.FindPath(ctx, pt(0, 0, 0), pt(19, 19, 0))
			assert.NoError(t, err)
			results[i] = p
		}(i)
	}
	wg.Wait()

	for _, p := range results {
		require.NotNil(t, p)
		assert.Equal(t, 38.0, p.Cost)
	}
	assert.Equal(t, int64(1), svc.Searches())

	// Callers own their copies.
	results[0].Waypoints[0].Node.ID = 999
	assert.Equal(t, graph.NodeID(0), results[1].Start())
}

func TestFindPathSegmented_SingleSegmentMatchesFindPath(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, graphtest.Grid(t, 6, 6))

	want, err := svc.FindPath(ctx, pt(0, 0, 0), pt(5, 3, 0))
	require.NoError(t, err)

	for _, n := range []int{1, 0, -2} {
		got, err := svc.FindPathSegmented(ctx, pt(0, 0, 0), pt(5, 3, 0), n)
		require.NoError(t, err)
		assert.Equal(t, want, got, "n=%d", n)
	}
}

func TestFindPathSegmented_Stitching(t *testing.T) {
	ctx := context.Background()
	g := graphtest.Grid(t, 10, 10)
	svc := newTestService(t, g, func(c *ServiceConfig) { c.TimePerUnit = time.Millisecond })

	for _, n := range []int{2, 3, 9, 30} {
		p, err := svc.FindPathSegmented(ctx, pt(0, 0, 0), pt(9, 9, 0), n)
		require.NoError(t, err, "n=%d", n)

		ids := p.NodeIDs()
		assert.Equal(t, graph.NodeID(0), ids[0])
		assert.Equal(t, graph.NodeID(99), ids[len(ids)-1])
		for i := 1; i < len(ids); i++ {
			require.NotEqual(t, ids[i-1], ids[i], "n=%d duplicated junction at %d", n, i)
			assert.InDelta(t, 1.0, g.Heuristic(ids[i-1], ids[i]), 1e-9, "consecutive nodes are grid neighbors")
		}
		assert.Equal(t, 18.0, p.Cost)
		assert.Equal(t, 18*time.Millisecond, p.Duration())
	}
}

func TestFindPathSegmented_SnappedWaypointDetour(t *testing.T) {
	ctx := context.Background()
	// The midpoint (5,0,0) snaps to node 2, which sits off the direct 0-1 edge.
	side := math.Sqrt(26)
	g := graphtest.New(t).
		Node(0, 0, 0, 0).
		Node(1, 10, 0, 0).
		Node(2, 5, 1, 0).
		BiEdge(0, 1, 10).
		BiEdge(0, 2, side).
		BiEdge(2, 1, side).
		Build()
	svc := newTestService(t, g)

	direct, err := svc.FindPath(ctx, pt(0, 0, 0), pt(10, 0, 0))
	require.NoError(t, err)
	first, err := svc.FindPath(ctx, pt(0, 0, 0), pt(5, 0, 0))
	require.NoError(t, err)
	second, err := svc.FindPath(ctx, pt(5, 0, 0), pt(10, 0, 0))
	require.NoError(t, err)

	p, err := svc.FindPathSegmented(ctx, pt(0, 0, 0), pt(10, 0, 0), 2)
	require.NoError(t, err)

	assert.Equal(t, []graph.NodeID{0, 2, 1}, p.NodeIDs())
	assert.LessOrEqual(t, p.Cost, first.Cost+second.Cost+1e-9)
	assert.InDelta(t, first.Cost+second.Cost, p.Cost, 1e-9)
	assert.Greater(t, p.Cost, direct.Cost, "stitched route is bound to its waypoints")
	assert.Equal(t, 10.0, direct.Cost)
}

func TestFindPath_FarAwayEndpoints(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, graphtest.Grid(t, 4, 4))

	n, err := svc.NearestNode(pt(1e200, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, graph.NodeID(0), n.ID, "overflowing distances resolve to the first node")

	p, err := svc.FindPath(ctx, pt(0, 3, 0), pt(1e200, 1e200, 0))
	require.NoError(t, err)
	assert.Equal(t, graph.NodeID(0), p.NodeIDs()[len(p.NodeIDs())-1])

	p, err = svc.FindPath(ctx, pt(-1e200, 0, 1e200), pt(3, 0, 0))
	require.NoError(t, err)
	assert.Equal(t, graph.NodeID(0), p.NodeIDs()[0])
	assert.Equal(t, 3.0, p.Cost)
}

func TestFindPathSegmented_AnySegmentFailureFailsQuery(t *testing.T) {
	svc := newTestService(t, graphtest.TwoClusters(t))

	// Midpoint (50,0,0) snaps to node 1, so the second segment crosses the gap.
	_, err := svc.FindPathSegmented(context.Background(), pt(0, 0, 0), pt(100, 0, 0), 2)
	assert.ErrorIs(t, err, ErrSegmentFailed)
	assert.ErrorIs(t, err, ErrNoPath)
}

func TestService_PrecomputeAtConstruction(t *testing.T) {
	svc := newTestService(t, graphtest.Grid(t, 10, 10), func(c *ServiceConfig) {
		c.Precompute = true
		c.PrecomputePairs = 100
		c.PrecomputeRadius = 3
		c.PrecomputeSeed = 1
	})

	assert.True(t, svc.Ready())
	stats := svc.Stats()
	assert.Equal(t, int64(100), stats.Precompute.Found)
	assert.Positive(t, stats.Cache.Entries)
	assert.Equal(t, int64(100), svc.Metrics().PathsPrecomputed)
}

func TestService_DeferredWarmup(t *testing.T) {
	svc := newTestService(t, graphtest.Grid(t, 5, 5), func(c *ServiceConfig) {
		c.Precompute = true
		c.DeferWarmup = true
		c.PrecomputePairs = 20
		c.PrecomputeRadius = 2
	})
	assert.False(t, svc.Ready())

	report, err := svc.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 20, report.Requested)
	assert.True(t, svc.Ready())
}

func TestService_WarmWithPrecomputeDisabled(t *testing.T) {
	svc := newTestService(t, graphtest.Grid(t, 8, 8), func(c *ServiceConfig) {
		c.Precompute = false
		c.DeferWarmup = true
		c.PrecomputePairs = 200
		c.PrecomputeRadius = 4
	})

	report, err := svc.Warm(context.Background())
	require.NoError(t, err)
	assert.Equal(t, precompute.Report{}, report)
	assert.True(t, svc.Ready())
	assert.Equal(t, int64(0), svc.Searches())
	assert.Equal(t, 0, svc.Stats().Cache.Entries)
	assert.Equal(t, int64(0), svc.Metrics().PathsPrecomputed)
}

func TestService_Reload(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, graphtest.TwoClusters(t))

	_, err := svc.FindPath(ctx, pt(0, 0, 0), pt(100, 0, 0))
	require.ErrorIs(t, err, ErrNoPath)
	gen := svc.Stats().Generation

	require.NoError(t, svc.Reload(ctx, graphtest.Grid(t, 3, 3)))

	p, err := svc.FindPath(ctx, pt(0, 0, 0), pt(2, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, 4.0, p.Cost)
	assert.Equal(t, gen+1, svc.Stats().Generation)
	assert.Equal(t, int64(1), svc.Searches(), "fresh engine after reload")
	assert.Equal(t, 9, svc.Graph().NodeCount())
}

func TestService_Metrics(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, graphtest.Grid(t, 4, 4))

	_, _ = svc.FindPath(ctx, pt(0, 0, 0), pt(3, 3, 0))
	_, _ = svc.FindPathSegmented(ctx, pt(0, 0, 0), pt(3, 0, 0), 3)

	m := svc.Metrics()
	assert.Equal(t, int64(2), m.Queries)
	assert.Positive(t, m.QueryTime)
}
