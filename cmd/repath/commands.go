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
	"log/slog"
	"os"

	"github.com/AleutianAI/RePath/services/navmesh/config"
	"github.com/AleutianAI/RePath/services/navmesh/telemetry"
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	configPath string
	debugMode  bool
	logFormat  string

	// cfg is populated by the root PersistentPreRunE before any subcommand runs.
	cfg config.Config

	servePort int

	queryFrom     string
	queryTo       string
	querySegments int
	queryJSON     bool

	benchQueries  int
	benchSegments int
	benchSeed     uint64
	benchNoRecord bool

	runsCSV bool

	rootCmd = &cobra.Command{
		Use:   "repath",
		Short: "Shortest-path queries over 3D navigation meshes",
		Long: `RePath loads a navigation mesh from an OBJ file, warms a path cache
with sampled nearby pairs, and answers point-to-point path queries
with A* or bidirectional A*.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP path service",
		Args:  cobra.NoArgs,
		RunE:  runServe, // Defined in cmd_serve.go
	}

	queryCmd = &cobra.Command{
		Use:   "query",
		Short: "Find one path and print it",
		Args:  cobra.NoArgs,
		RunE:  runQuery, // Defined in cmd_query.go
	}

	benchCmd = &cobra.Command{
		Use:   "bench",
		Short: "Run random queries and record timing in the run log",
		Args:  cobra.NoArgs,
		RunE:  runBench, // Defined in cmd_bench.go
	}

	runsCmd = &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs",
		Args:  cobra.NoArgs,
		RunE:  runRuns, // Defined in cmd_runs.go
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "repath.yaml", "Path to the YAML config file (missing file uses defaults)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging and gin debug mode")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	serveCmd.Flags().IntVar(&servePort, "port", 0, "Listen port (overrides server.port)")

	queryCmd.Flags().StringVar(&queryFrom, "from", "", "Start point as x,y,z")
	queryCmd.Flags().StringVar(&queryTo, "to", "", "End point as x,y,z")
	queryCmd.Flags().IntVar(&querySegments, "segments", 1, "Split the query into this many concurrent segments")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "Print the path as JSON")
	_ = queryCmd.MarkFlagRequired("from")
	_ = queryCmd.MarkFlagRequired("to")

	benchCmd.Flags().IntVar(&benchQueries, "queries", 100, "Number of random queries")
	benchCmd.Flags().IntVar(&benchSegments, "segments", 1, "Segments per query")
	benchCmd.Flags().Uint64Var(&benchSeed, "seed", 0, "Seed for endpoint sampling (0 = random)")
	benchCmd.Flags().BoolVar(&benchNoRecord, "no-record", false, "Do not append the result to the run log")

	runsCmd.Flags().BoolVar(&runsCSV, "csv", false, "Write runs as CSV to stdout")

	rootCmd.AddCommand(serveCmd, queryCmd, benchCmd, runsCmd)
}

// loadConfig resolves configuration and installs the process logger.
func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if debugMode {
		loaded.Server.Debug = true
	}
	cfg = loaded

	slog.SetDefault(telemetry.NewLogger(os.Stderr, logFormat, cfg.Server.Debug))
	slog.Debug("configuration loaded",
		slog.String("path", configPath),
		slog.String("mesh", cfg.Mesh.Path),
		slog.String("cache_policy", cfg.Cache.Policy),
		slog.String("algorithm", cfg.Search.Algorithm),
	)
	return nil
}
