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
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AleutianAI/RePath/services/navmesh"
	"github.com/AleutianAI/RePath/services/navmesh/cache"
	"github.com/AleutianAI/RePath/services/navmesh/config"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/AleutianAI/RePath/services/navmesh/meshio"
	"github.com/AleutianAI/RePath/services/navmesh/runlog"
	"github.com/AleutianAI/RePath/services/navmesh/search"
	"github.com/AleutianAI/RePath/services/navmesh/telemetry"
)

// serviceConfig maps the file/env configuration onto navmesh.ServiceConfig.
func serviceConfig(c config.Config) (navmesh.ServiceConfig, error) {
	policy, err := cache.ParsePolicy(c.Cache.Policy)
	if err != nil {
		return navmesh.ServiceConfig{}, err
	}
	algorithm, err := search.ParseAlgorithm(c.Search.Algorithm)
	if err != nil {
		return navmesh.ServiceConfig{}, err
	}
	meeting, err := search.ParseMeetingRule(c.Search.MeetingRule)
	if err != nil {
		return navmesh.ServiceConfig{}, err
	}

	sc := navmesh.DefaultServiceConfig()
	sc.CachePolicy = policy
	sc.CacheCapacity = c.Cache.Capacity
	sc.Algorithm = algorithm
	sc.Meeting = meeting
	sc.TimePerUnit = c.Search.TimePerUnit
	sc.Precompute = c.Precompute.Enabled
	sc.PrecomputePairs = c.Precompute.Pairs
	sc.PrecomputeRadius = c.Precompute.Radius
	sc.PrecomputeSeed = c.Precompute.Seed
	if c.Precompute.Workers > 0 {
		sc.Workers = c.Precompute.Workers
	}
	return sc, nil
}

func telemetryConfig(c config.Config) telemetry.Config {
	tc := telemetry.DefaultConfig()
	tc.ServiceName = c.Telemetry.ServiceName
	tc.TraceExporter = c.Telemetry.TraceExporter
	tc.MetricExporter = c.Telemetry.MetricExporter
	tc.OTLPEndpoint = c.Telemetry.OTLPEndpoint
	tc.OTLPInsecure = c.Telemetry.OTLPInsecure
	return tc
}

func parseOptions(c config.Config) meshio.ParseOptions {
	return meshio.ParseOptions{Undirected: c.Mesh.Undirected}
}

// buildService loads the mesh and constructs the service. With deferWarmup
// the caller must start Warm itself.
func buildService(ctx context.Context, c config.Config, deferWarmup bool) (*navmesh.Service, error) {
	g, err := meshio.Load(c.Mesh.Path, parseOptions(c))
	if err != nil {
		return nil, err
	}
	sc, err := serviceConfig(c)
	if err != nil {
		return nil, err
	}
	sc.DeferWarmup = deferWarmup
	return navmesh.NewService(ctx, g, sc)
}

// parseVec3 parses "x,y,z".
func parseVec3(s string) (graph.Vec3, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return graph.Vec3{}, fmt.Errorf("point %q: want x,y,z", s)
	}
	var xyz [3]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return graph.Vec3{}, fmt.Errorf("point %q: %w", s, err)
		}
		xyz[i] = v
	}
	return graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func openRunLog(c config.Config) (*runlog.Store, error) {
	return runlog.Open(runlog.Options{
		Path:       c.RunLog.Path,
		InMemory:   c.RunLog.InMemory,
		SyncWrites: true,
	})
}

// newRecord captures the settings and accumulated metrics of svc.
func newRecord(c config.Config, m navmesh.RunMetrics) runlog.Record {
	return runlog.Record{
		MeshPath:          c.Mesh.Path,
		Precompute:        c.Precompute.Enabled,
		PrecomputeRadius:  c.Precompute.Radius,
		PrecomputePairs:   c.Precompute.Pairs,
		CachePolicy:       c.Cache.Policy,
		CacheCapacity:     c.Cache.Capacity,
		Algorithm:         c.Search.Algorithm,
		PathsPrecomputed:  int(m.PathsPrecomputed),
		PrecomputeSeconds: m.PrecomputeTime.Seconds(),
		Queries:           m.Queries,
		QuerySeconds:      m.QueryTime.Seconds(),
	}
}

// recordRun appends the service's metrics to the run log.
func recordRun(ctx context.Context, c config.Config, svc *navmesh.Service) (runlog.Record, error) {
	store, err := openRunLog(c)
	if err != nil {
		return runlog.Record{}, err
	}
	defer store.Close()
	return store.Append(ctx, newRecord(c, svc.Metrics()))
}
