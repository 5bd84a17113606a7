// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package runlog

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpen_PathRequired(t *testing.T) {
	_, err := Open(Options{})
	assert.ErrorIs(t, err, ErrPathRequired)
}

func TestAppend_FillsIdentity(t *testing.T) {
	s := openTestStore(t)

	rec, err := s.Append(context.Background(), Record{MeshPath: "a.obj"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, rec.ID)
	assert.False(t, rec.RecordedAt.IsZero())
}

func TestList_OldestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	// Appended out of order on purpose.
	for _, offset := range []int{2, 0, 1} {
		_, err := s.Append(ctx, Record{
			MeshPath:   "mesh.obj",
			Queries:    int64(offset),
			RecordedAt: base.Add(time.Duration(offset) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i, r := range records {
		assert.Equal(t, int64(i), r.Queries)
	}
}

func TestList_Empty(t *testing.T) {
	records, err := openTestStore(t).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAppend_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := openTestStore(t).Append(ctx, Record{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPersistentRoundTrip(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	s, err := Open(Options{Path: dir})
	require.NoError(t, err)
	want, err := s.Append(ctx, Record{MeshPath: "level.obj", PathsPrecomputed: 12, PrecomputeSeconds: 0.5})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(Options{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	records, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, want.ID, records[0].ID)
	assert.True(t, want.RecordedAt.Equal(records[0].RecordedAt))
	assert.Equal(t, 12, records[0].PathsPrecomputed)
}

func TestExportCSV(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, Record{
		MeshPath:          "navmesh.obj",
		Precompute:        true,
		PrecomputeRadius:  50,
		PrecomputePairs:   1000,
		PathsPrecomputed:  987,
		PrecomputeSeconds: 1.25,
		CacheCapacity:     100000,
		CachePolicy:       "lru",
		Algorithm:         "astar",
		Queries:           3,
		QuerySeconds:      0.004,
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, s.ExportCSV(ctx, &buf))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, csvHeader, rows[0])
	assert.Equal(t, []string{"navmesh.obj", "true", "50", "987", "1000", "1.25", "100000", "0.004"}, rows[1][:8])
	assert.Equal(t, "lru", rows[1][10])
	assert.Equal(t, "3", rows[1][12])
}
