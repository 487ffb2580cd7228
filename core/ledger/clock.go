// Copyright 2025 The go-trustmesh Authors
// This file is part of the go-trustmesh library.
//
// The go-trustmesh library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-trustmesh library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-trustmesh library. If not, see <http://www.gnu.org/licenses/>.

// Package ledger provides the logical clock ordering registry state
// transitions. The registries only consume clock values; how they are
// produced (block height, wall time, manual ticks) is the host's choice.
package ledger

import (
	"sync/atomic"
	"time"
)

// Clock yields the monotonically increasing ordering value used for
// validation expiry arithmetic.
type Clock interface {
	Now() uint64
}

// LogicalClock is a manually advanced clock. Useful for deployments that
// tick once per admitted transaction batch, and for tests.
type LogicalClock struct {
	now uint64
}

// NewLogicalClock starts a clock at the given value.
func NewLogicalClock(start uint64) *LogicalClock {
	return &LogicalClock{now: start}
}

// Now returns the current clock value.
func (c *LogicalClock) Now() uint64 {
	return atomic.LoadUint64(&c.now)
}

// Advance moves the clock forward by delta and returns the new value.
func (c *LogicalClock) Advance(delta uint64) uint64 {
	return atomic.AddUint64(&c.now, delta)
}

// Set jumps the clock to value if that moves it forward. Regressions are
// ignored so the clock stays monotonic.
func (c *LogicalClock) Set(value uint64) {
	for {
		cur := atomic.LoadUint64(&c.now)
		if value <= cur {
			return
		}
		if atomic.CompareAndSwapUint64(&c.now, cur, value) {
			return
		}
	}
}

// WallClock derives the logical clock from Unix seconds. Deployments
// without a block producer use this.
type WallClock struct{}

// Now returns the current Unix time in seconds.
func (WallClock) Now() uint64 {
	return uint64(time.Now().Unix())
}
