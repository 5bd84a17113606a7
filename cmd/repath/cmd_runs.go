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
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func runRuns(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	store, err := openRunLog(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	out := cmd.OutOrStdout()
	if runsCSV {
		return store.ExportCSV(ctx, out)
	}

	records, err := store.List(ctx)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(out, "no runs recorded")
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RECORDED\tMESH\tCACHE\tALGORITHM\tPRECOMPUTED\tPRECOMPUTE\tQUERIES\tQUERY TIME")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s/%d\t%s\t%d\t%s\t%d\t%s\n",
			r.RecordedAt.Local().Format(time.DateTime),
			r.MeshPath,
			r.CachePolicy, r.CacheCapacity,
			r.Algorithm,
			r.PathsPrecomputed,
			seconds(r.PrecomputeSeconds),
			r.Queries,
			seconds(r.QuerySeconds),
		)
	}
	return tw.Flush()
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second)).Round(time.Microsecond)
}
