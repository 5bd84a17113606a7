// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command repath loads a navigation mesh and answers shortest-path queries.
//
// Usage:
//
//	repath serve --config repath.yaml
//	repath query --from 0,0,0 --to 12.5,0,40 --segments 4
//	repath bench --queries 500
//	repath runs --csv > metrics.csv
//
// Example requests against a running server:
//
//	# Readiness (503 until the cache is warm)
//	curl http://localhost:12300/v1/navmesh/ready
//
//	# Find a path
//	curl -X POST http://localhost:12300/v1/navmesh/path \
//	  -H "Content-Type: application/json" \
//	  -d '{"start": {"x": 0, "y": 0, "z": 0}, "end": {"x": 10, "y": 0, "z": 3}, "segments": 2}'
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
