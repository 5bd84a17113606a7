// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package navmesh

import "sync/atomic"

// warmupState tracks whether cache precompute has finished for the current
// mesh. 0 = warming, 1 = ready.
//
// Thread Safety: All methods are safe for concurrent use.
type warmupState struct {
	status atomic.Int32
}

// isComplete returns true once precompute has finished, successfully or not.
func (w *warmupState) isComplete() bool {
	return w.status.Load() == 1
}

// markComplete is called after precompute finishes. After this the /ready
// endpoint returns 200 OK.
func (w *warmupState) markComplete() {
	w.status.Store(1)
}

// reset returns to the warming state, e.g. when a new mesh is loaded.
func (w *warmupState) reset() {
	w.status.Store(0)
}
