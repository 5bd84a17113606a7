// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "repath.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefault_IsValid(t *testing.T) {
	assert.NoError(t, Default().Validate())
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
mesh:
  path: maps/level1.obj
  undirected: true
precompute:
  enabled: false
  radius: 12.5
  pairs: 40
cache:
  policy: concurrent
  capacity: 0
search:
  algorithm: bidirectional
  meeting_rule: frontier
  time_per_unit: 250ms
server:
  port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "maps/level1.obj", cfg.Mesh.Path)
	assert.True(t, cfg.Mesh.Undirected)
	assert.False(t, cfg.Precompute.Enabled)
	assert.Equal(t, 12.5, cfg.Precompute.Radius)
	assert.Equal(t, 40, cfg.Precompute.Pairs)
	assert.Equal(t, "concurrent", cfg.Cache.Policy)
	assert.Equal(t, "bidirectional", cfg.Search.Algorithm)
	assert.Equal(t, "frontier", cfg.Search.MeetingRule)
	assert.Equal(t, 250*time.Millisecond, cfg.Search.TimePerUnit)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "repath", cfg.Telemetry.ServiceName, "unset keys keep defaults")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "cache:\n  capacity: 10\nprecompute:\n  pairs: 5\n")
	t.Setenv("REPATH_CACHE_CAPACITY", "77")
	t.Setenv("REPATH_MESH_PATH", "/srv/mesh.obj")
	t.Setenv("REPATH_SEARCH_TIME_PER_UNIT", "2s")
	t.Setenv("REPATH_PRECOMPUTE_ENABLED", "false")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 77, cfg.Cache.Capacity)
	assert.Equal(t, 5, cfg.Precompute.Pairs)
	assert.Equal(t, "/srv/mesh.obj", cfg.Mesh.Path)
	assert.Equal(t, 2*time.Second, cfg.Search.TimePerUnit)
	assert.False(t, cfg.Precompute.Enabled)
}

func TestLoad_BadEnv(t *testing.T) {
	t.Setenv("REPATH_CACHE_CAPACITY", "lots")

	_, err := Load("")
	assert.ErrorContains(t, err, "REPATH_CACHE_CAPACITY")
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "cache: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"lru zero capacity", func(c *Config) { c.Cache.Capacity = 0 }, cache.ErrInvalidCapacity},
		{"concurrent zero capacity ok", func(c *Config) { c.Cache.Policy = "concurrent"; c.Cache.Capacity = 0 }, nil},
		{"unknown policy", func(c *Config) { c.Cache.Policy = "fifo" }, ErrInvalidConfig},
		{"unknown algorithm", func(c *Config) { c.Search.Algorithm = "dijkstra" }, ErrInvalidConfig},
		{"zero radius", func(c *Config) { c.Precompute.Radius = 0 }, ErrInvalidConfig},
		{"negative pairs", func(c *Config) { c.Precompute.Pairs = -1 }, ErrInvalidConfig},
		{"missing mesh", func(c *Config) { c.Mesh.Path = "" }, ErrInvalidConfig},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }, ErrInvalidConfig},
		{"bad exporter", func(c *Config) { c.Telemetry.MetricExporter = "statsd" }, ErrInvalidConfig},
		{"no runlog path", func(c *Config) { c.RunLog.Path = "" }, ErrInvalidConfig},
		{"in-memory runlog", func(c *Config) { c.RunLog.Path = ""; c.RunLog.InMemory = true }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
