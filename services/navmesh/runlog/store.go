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
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const recordPrefix = "run/"

// Record is the metrics summary of one run.
type Record struct {
	ID         uuid.UUID `json:"id"`
	RecordedAt time.Time `json:"recorded_at"`

	// Settings the run used.
	MeshPath         string  `json:"mesh_path"`
	Precompute       bool    `json:"precompute"`
	PrecomputeRadius float64 `json:"precompute_radius"`
	PrecomputePairs  int     `json:"precompute_pairs"`
	CachePolicy      string  `json:"cache_policy"`
	CacheCapacity    int     `json:"cache_capacity"`
	Algorithm        string  `json:"algorithm"`

	// Outcomes.
	PathsPrecomputed  int     `json:"paths_precomputed"`
	PrecomputeSeconds float64 `json:"precompute_seconds"`
	Queries           int64   `json:"queries"`
	QuerySeconds      float64 `json:"query_seconds"`
}

// Store is an append-only log of Records.
type Store struct {
	db *badger.DB
}

// Open opens (or creates) a store.
//
// Inputs:
//
//	opts - Path is required unless InMemory is set.
//
// Outputs:
//
//	*Store - Caller must Close.
//	error - Non-nil if the database cannot be opened.
func Open(opts Options) (*Store, error) {
	db, err := openDB(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a throwaway store.
func OpenInMemory() (*Store, error) {
	return Open(Options{InMemory: true})
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Append stores rec. A zero ID or RecordedAt is filled in.
//
// Outputs:
//
//	Record - The stored record with ID and RecordedAt set.
//	error - Non-nil on encoding or commit failure.
func (s *Store) Append(ctx context.Context, rec Record) (Record, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now()
	}
	rec.RecordedAt = rec.RecordedAt.UTC()

	data, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("encode record: %w", err)
	}

	err = update(ctx, s.db, func(txn *badger.Txn) error {
		return txn.Set(recordKey(rec), data)
	})
	if err != nil {
		return rec, fmt.Errorf("append record %s: %w", rec.ID, err)
	}
	return rec, nil
}

// List returns every record, oldest first.
func (s *Store) List(ctx context.Context) ([]Record, error) {
	var out []Record
	prefix := []byte(recordPrefix)

	err := view(ctx, s.db, func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return fmt.Errorf("decode record %s: %w", it.Item().Key(), err)
			}
			out = append(out, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// csvHeader keeps the column order of the original metrics file, followed by
// the columns RePath adds.
var csvHeader = []string{
	"navmesh_filename",
	"use_precomputed_cache",
	"precompute_radius",
	"total_paths_precomputed",
	"total_precompute_pairs",
	"precomputation_time",
	"cache_capacity",
	"pathfinding_time",
	"id",
	"recorded_at",
	"cache_policy",
	"algorithm",
	"queries",
}

// ExportCSV writes a header row followed by one row per record.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer) error {
	records, err := s.List(ctx)
	if err != nil {
		return err
	}
	return WriteCSV(w, records)
}

// WriteCSV renders records in the metrics CSV layout.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			r.MeshPath,
			strconv.FormatBool(r.Precompute),
			strconv.FormatFloat(r.PrecomputeRadius, 'f', -1, 64),
			strconv.Itoa(r.PathsPrecomputed),
			strconv.Itoa(r.PrecomputePairs),
			strconv.FormatFloat(r.PrecomputeSeconds, 'f', -1, 64),
			strconv.Itoa(r.CacheCapacity),
			strconv.FormatFloat(r.QuerySeconds, 'f', -1, 64),
			r.ID.String(),
			r.RecordedAt.Format(time.RFC3339Nano),
			r.CachePolicy,
			r.Algorithm,
			strconv.FormatInt(r.Queries, 10),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// recordKey sorts by time, then id for records sharing a timestamp.
func recordKey(rec Record) []byte {
	return []byte(fmt.Sprintf("%s%020d/%s", recordPrefix, rec.RecordedAt.UnixNano(), rec.ID))
}
