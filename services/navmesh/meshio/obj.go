// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package meshio

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/RePath/services/navmesh/graph"
)

// maxLineBytes bounds a single OBJ line.
const maxLineBytes = 1 << 20

// ParseOptions configures mesh parsing.
type ParseOptions struct {
	// Undirected also adds the reverse of every triangle edge, so boundary
	// edges of an open mesh are walkable in both directions.
	Undirected bool
}

// face is a parsed polygon with 0-based vertex indices and its source line.
type face struct {
	line  int
	verts []int
}

// Parse reads an OBJ mesh and returns a frozen graph.
//
// Description:
//
//	Recognizes `v x y z [w]` and `f i j k ...` lines. Face tokens may use
//	the `v/vt/vn` forms; only the vertex index is used. Indices are 1-based
//	and negative indices count back from the last vertex defined so far.
//	Polygons with more than three vertices are fan-triangulated. All other
//	directives and `#` comments are ignored.
//
// Errors:
//
//	ErrMalformedLine - unparsable `v` or `f` line (wrapped with line number)
//	ErrFaceIndex - face index 0 or outside the vertex list
func Parse(r io.Reader, opts ParseOptions) (*graph.Graph, error) {
	var (
		positions []graph.Vec3
		faces     []face
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}

		switch fields[0] {
		case "v":
			p, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedLine, lineNo, err)
			}
			positions = append(positions, p)
		case "f":
			f, err := parseFace(fields[1:], len(positions))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			f.line = lineNo
			faces = append(faces, f)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading mesh: %w", err)
	}

	g := graph.NewGraph(graph.WithCapacityHint(len(positions)))
	for i, p := range positions {
		if err := g.AddNode(graph.NodeID(i), p); err != nil {
			return nil, err
		}
	}

	for _, f := range faces {
		for _, v := range f.verts {
			if v >= len(positions) {
				return nil, fmt.Errorf("%w: line %d: vertex %d of %d", ErrFaceIndex, f.line, v+1, len(positions))
			}
		}
		for i := 1; i+1 < len(f.verts); i++ {
			tri := [3]int{f.verts[0], f.verts[i], f.verts[i+1]}
			for k := 0; k < 3; k++ {
				if err := addEdge(g, positions, tri[k], tri[(k+1)%3], opts.Undirected); err != nil {
					return nil, fmt.Errorf("line %d: %w", f.line, err)
				}
			}
		}
	}

	if err := g.Freeze(); err != nil {
		return nil, err
	}
	return g, nil
}

func addEdge(g *graph.Graph, positions []graph.Vec3, a, b int, undirected bool) error {
	cost := positions[a].Distance(positions[b])
	if err := g.AddEdge(graph.NodeID(a), graph.NodeID(b), cost); err != nil {
		return err
	}
	if undirected {
		return g.AddEdge(graph.NodeID(b), graph.NodeID(a), cost)
	}
	return nil
}

func parseVertex(args []string) (graph.Vec3, error) {
	if len(args) < 3 {
		return graph.Vec3{}, fmt.Errorf("vertex needs 3 coordinates, got %d", len(args))
	}
	var xyz [3]float64
	for i := range xyz {
		v, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return graph.Vec3{}, fmt.Errorf("coordinate %q: %w", args[i], err)
		}
		xyz[i] = v
	}
	return graph.Vec3{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// parseFace resolves face tokens to 0-based indices. seen is the number of
// vertices defined before this line, used for negative indices.
func parseFace(args []string, seen int) (face, error) {
	if len(args) < 3 {
		return face{}, fmt.Errorf("%w: face needs at least 3 vertices, got %d", ErrMalformedLine, len(args))
	}
	f := face{verts: make([]int, len(args))}
	for i, tok := range args {
		if slash := strings.IndexByte(tok, '/'); slash >= 0 {
			tok = tok[:slash]
		}
		idx, err := strconv.Atoi(tok)
		if err != nil {
			return face{}, fmt.Errorf("%w: face index %q", ErrMalformedLine, args[i])
		}
		switch {
		case idx > 0:
			f.verts[i] = idx - 1
		case idx < 0 && seen+idx >= 0:
			f.verts[i] = seen + idx
		default:
			return face{}, fmt.Errorf("%w: index %d", ErrFaceIndex, idx)
		}
	}
	return f, nil
}

// Load parses the OBJ file at path.
func Load(path string, opts ParseOptions) (*graph.Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening mesh: %w", err)
	}
	defer f.Close()

	began := time.Now()
	g, err := Parse(f, opts)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	slog.Info("navmesh loaded",
		slog.String("path", path),
		slog.Int("nodes", g.NodeCount()),
		slog.Int("edges", g.EdgeCount()),
		slog.Bool("symmetric", g.Symmetric()),
		slog.Duration("duration", time.Since(began)),
	)
	return g, nil
}
