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

package ledger

import (
	"sync"
	"testing"
)

func TestLogicalClockAdvance(t *testing.T) {
	c := NewLogicalClock(10)
	if now := c.Now(); now != 10 {
		t.Fatalf("start = %d, want 10", now)
	}
	if next := c.Advance(5); next != 15 {
		t.Fatalf("advance = %d, want 15", next)
	}
	c.Set(12) // regression, ignored
	if now := c.Now(); now != 15 {
		t.Fatalf("after stale set = %d, want 15", now)
	}
	c.Set(100)
	if now := c.Now(); now != 100 {
		t.Fatalf("after set = %d, want 100", now)
	}
}

func TestLogicalClockConcurrentAdvance(t *testing.T) {
	c := NewLogicalClock(0)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Advance(1)
			}
		}()
	}
	wg.Wait()
	if now := c.Now(); now != 8000 {
		t.Fatalf("now = %d, want 8000", now)
	}
}
