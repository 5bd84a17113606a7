// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh"
	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/AleutianAI/RePath/services/navmesh/config"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/AleutianAI/RePath/services/navmesh/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quadOBJ = `# unit quad
v 0 0 0
v 1 0 0
v 1 0 1
v 0 0 1
f 1 2 3 4
`

// writeFixture writes a mesh and a config pointing at it, returning the
// config path.
func writeFixture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mesh := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(mesh, []byte(quadOBJ), 0o644))

	conf := filepath.Join(dir, "repath.yaml")
	body := "mesh:\n  path: " + mesh + "\n  undirected: true\n" +
		"precompute:\n  enabled: false\n" +
		"runlog:\n  in_memory: true\n" +
		"telemetry:\n  metric_exporter: none\n"
	require.NoError(t, os.WriteFile(conf, []byte(body), 0o644))
	return conf
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	require.NoError(t, rootCmd.Execute(), out.String())
	return out.String()
}

func TestParseVec3(t *testing.T) {
	tests := []struct {
		in      string
		want    graph.Vec3
		wantErr bool
	}{
		{"1,2,3", graph.Vec3{X: 1, Y: 2, Z: 3}, false},
		{" -1.5, 0 ,2e1", graph.Vec3{X: -1.5, Z: 20}, false},
		{"1,2", graph.Vec3{}, true},
		{"a,b,c", graph.Vec3{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseVec3(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestServiceConfig(t *testing.T) {
	c := config.Default()
	c.Cache.Policy = "concurrent"
	c.Search.Algorithm = "bidirectional"
	c.Search.MeetingRule = "frontier"
	c.Search.TimePerUnit = 500 * time.Millisecond
	c.Precompute.Workers = 3
	c.Precompute.Seed = 42

	sc, err := serviceConfig(c)
	require.NoError(t, err)

	assert.Equal(t, cache.PolicyConcurrent, sc.CachePolicy)
	assert.Equal(t, search.AlgorithmBidirectional, sc.Algorithm)
	assert.Equal(t, search.MeetingFrontier, sc.Meeting)
	assert.Equal(t, 500*time.Millisecond, sc.TimePerUnit)
	assert.Equal(t, 3, sc.Workers)
	assert.Equal(t, uint64(42), sc.PrecomputeSeed)
}

func TestNewRecord(t *testing.T) {
	rec := newRecord(config.Default(), navmesh.RunMetrics{
		PrecomputeTime:   1500 * time.Millisecond,
		PathsPrecomputed: 9,
		QueryTime:        20 * time.Millisecond,
		Queries:          4,
	})

	assert.Equal(t, "navmesh.obj", rec.MeshPath)
	assert.Equal(t, 9, rec.PathsPrecomputed)
	assert.InDelta(t, 1.5, rec.PrecomputeSeconds, 1e-9)
	assert.InDelta(t, 0.02, rec.QuerySeconds, 1e-9)
	assert.Equal(t, int64(4), rec.Queries)
}

func TestQueryCommand_JSON(t *testing.T) {
	conf := writeFixture(t)

	out := execute(t, "query", "--config", conf, "--from", "0,0,0", "--to", "1,0,1", "--json")

	var resp navmesh.PathResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.NotNil(t, resp.Path)
	assert.Equal(t, 1, resp.Segments)
	assert.Equal(t, 2, resp.Path.Len(), "fan triangulation adds the 1-3 diagonal")
	assert.InDelta(t, math.Sqrt2, resp.Path.Cost, 1e-9)
}

func TestBenchCommand(t *testing.T) {
	conf := writeFixture(t)

	out := execute(t, "bench", "--config", conf, "--queries", "20", "--seed", "7")

	assert.Contains(t, out, "queries: 20")
	assert.Contains(t, out, "no path: 0")
	assert.Contains(t, out, "recorded run")
}

func TestRunsCommand_Empty(t *testing.T) {
	conf := writeFixture(t)

	out := execute(t, "runs", "--config", conf)
	assert.Contains(t, out, "no runs recorded")
}

func TestNewRouter(t *testing.T) {
	cfg = config.Default()
	cfg.Precompute.Enabled = false
	cfg.Server.RateLimit = 1000

	g := graph.NewGraph()
	require.NoError(t, g.AddNode(0, graph.Vec3{}))
	require.NoError(t, g.Freeze())

	sc, err := serviceConfig(cfg)
	require.NoError(t, err)
	svc, err := navmesh.NewService(t.Context(), g, sc)
	require.NoError(t, err)

	router := newRouter(svc)
	for _, path := range []string{"/v1/navmesh/health", "/metrics"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
