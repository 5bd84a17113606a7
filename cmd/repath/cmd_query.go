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
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh"
	"github.com/AleutianAI/RePath/services/navmesh/graph"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func runQuery(cmd *cobra.Command, _ []string) error {
	from, err := parseVec3(queryFrom)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	to, err := parseVec3(queryTo)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	ctx := cmd.Context()
	svc, err := buildService(ctx, cfg, false)
	if err != nil {
		return err
	}

	began := time.Now()
	path, err := svc.FindPathSegmented(ctx, from, to, querySegments)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)

	out := cmd.OutOrStdout()
	if queryJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(navmesh.PathResponse{
			RequestID: uuid.NewString(),
			Segments:  max(querySegments, 1),
			Path:      path,
			ElapsedMs: elapsed.Milliseconds(),
		})
	}
	return printPath(out, path, elapsed)
}

func printPath(w io.Writer, p *graph.Path, elapsed time.Duration) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tNODE\tPOSITION\tOFFSET\tDISTANCE")
	for i, wp := range p.Waypoints {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%s\t%.3f\n", i, wp.Node.ID, wp.Node.Pos, wp.Offset, wp.Distance)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "\n%d waypoints, cost %.3f, duration %s, query took %s\n",
		p.Len(), p.Cost, p.Duration(), elapsed)
	return err
}
