// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package search

import (
	"fmt"
	"strings"
	"time"
)

// Algorithm selects the strategy used by Engine.Search.
type Algorithm string

const (
	// AlgorithmAStar is a single forward A* search.
	AlgorithmAStar Algorithm = "astar"

	// AlgorithmBidirectional runs A* from both ends at once.
	AlgorithmBidirectional Algorithm = "bidirectional"
)

// ParseAlgorithm converts a configuration string into an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch a := Algorithm(strings.ToLower(strings.TrimSpace(s))); a {
	case AlgorithmAStar, AlgorithmBidirectional:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
	}
}

// MeetingRule decides when a bidirectional search stops.
type MeetingRule string

const (
	// MeetingBounded tracks the best complete path seen where the two
	// searches touch, and stops once neither frontier can improve on it.
	// The result is always a least-cost path.
	MeetingBounded MeetingRule = "bounded"

	// MeetingFrontier stops the first time a node taken from one frontier
	// has already been settled by the other. Faster, but the returned path
	// is not guaranteed to be least-cost.
	MeetingFrontier MeetingRule = "frontier"
)

// ParseMeetingRule converts a configuration string into a MeetingRule.
func ParseMeetingRule(s string) (MeetingRule, error) {
	switch m := MeetingRule(strings.ToLower(strings.TrimSpace(s))); m {
	case MeetingBounded, MeetingFrontier:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMeetingRule, s)
	}
}

// EngineOptions configures an Engine.
type EngineOptions struct {
	// Algorithm is used by Engine.Search. Default AlgorithmAStar.
	Algorithm Algorithm

	// Meeting is the bidirectional stopping rule. Default MeetingBounded.
	Meeting MeetingRule

	// TimePerUnit is the duration one unit of edge cost takes. It scales
	// waypoint offsets. Default one second.
	TimePerUnit time.Duration
}

// EngineOption is a functional option for configuring an Engine.
type EngineOption func(*EngineOptions)

// WithAlgorithm sets the algorithm used by Engine.Search.
func WithAlgorithm(a Algorithm) EngineOption {
	return func(o *EngineOptions) {
		o.Algorithm = a
	}
}

// WithMeetingRule sets the bidirectional stopping rule.
func WithMeetingRule(m MeetingRule) EngineOption {
	return func(o *EngineOptions) {
		o.Meeting = m
	}
}

// WithTimePerUnit sets the cost-to-time scale for waypoint offsets.
func WithTimePerUnit(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		if d > 0 {
			o.TimePerUnit = d
		}
	}
}

func defaultEngineOptions() EngineOptions {
	return EngineOptions{
		Algorithm:   AlgorithmAStar,
		Meeting:     MeetingBounded,
		TimePerUnit: time.Second,
	}
}
