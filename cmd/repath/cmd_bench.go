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
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh"
	"github.com/spf13/cobra"
)

// benchResult summarizes one bench invocation.
type benchResult struct {
	Queries int
	Found   int
	NoPath  int
	Elapsed time.Duration
}

func runBench(cmd *cobra.Command, _ []string) error {
	if benchQueries <= 0 {
		return errors.New("--queries must be positive")
	}

	ctx := cmd.Context()
	svc, err := buildService(ctx, cfg, false)
	if err != nil {
		return err
	}

	seed := benchSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed))

	res, err := bench(cmd, svc, rng)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "queries: %d  found: %d  no path: %d  elapsed: %s  searches: %d\n",
		res.Queries, res.Found, res.NoPath, res.Elapsed, svc.Searches())

	if benchNoRecord {
		return nil
	}
	rec, err := recordRun(ctx, cfg, svc)
	if err != nil {
		return fmt.Errorf("record run: %w", err)
	}
	fmt.Fprintf(out, "recorded run %s\n", rec.ID)
	return nil
}

// bench issues random node-to-node queries against svc.
func bench(cmd *cobra.Command, svc *navmesh.Service, rng *rand.Rand) (benchResult, error) {
	g := svc.Graph()
	res := benchResult{Queries: benchQueries}
	began := time.Now()

	for i := range benchQueries {
		a, okA := g.RandomNode(rng)
		b, okB := g.RandomNode(rng)
		if !okA || !okB {
			return res, navmesh.ErrEmptyGraph
		}

		_, err := svc.FindPathSegmented(cmd.Context(), g.Position(a), g.Position(b), benchSegments)
		switch {
		case err == nil:
			res.Found++
		case errors.Is(err, navmesh.ErrNoPath):
			res.NoPath++
		default:
			return res, err
		}

		if (i+1)%100 == 0 {
			slog.Debug("bench progress", slog.Int("done", i+1), slog.Int("total", benchQueries))
		}
	}
	res.Elapsed = time.Since(began)
	return res, nil
}
