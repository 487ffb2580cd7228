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

package trustdb

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemoryDBBasicOps(t *testing.T) {
	db := NewMemoryDB()

	if _, err := db.Get([]byte("missing")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: err = %v, want ErrNotFound", err)
	}
	if err := db.Put([]byte("k1"), []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := db.Get([]byte("k1"))
	if err != nil || !bytes.Equal(got, []byte("v1")) {
		t.Fatalf("get = %q, %v", got, err)
	}
	has, err := db.Has([]byte("k1"))
	if err != nil || !has {
		t.Fatalf("has = %v, %v", has, err)
	}
	if err := db.Delete([]byte("k1")); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if has, _ := db.Has([]byte("k1")); has {
		t.Fatal("key survived delete")
	}
	// Deleting an absent key is a no-op, not an error.
	if err := db.Delete([]byte("k1")); err != nil {
		t.Fatalf("double delete: %v", err)
	}
}

func TestMemoryDBValueIsolation(t *testing.T) {
	db := NewMemoryDB()
	value := []byte("mutable")
	if err := db.Put([]byte("k"), value); err != nil {
		t.Fatalf("put: %v", err)
	}
	value[0] = 'X'
	got, _ := db.Get([]byte("k"))
	if !bytes.Equal(got, []byte("mutable")) {
		t.Fatalf("stored value aliased caller slice: %q", got)
	}
	got[0] = 'Y'
	again, _ := db.Get([]byte("k"))
	if !bytes.Equal(again, []byte("mutable")) {
		t.Fatalf("returned value aliased store: %q", again)
	}
}

func TestMemoryDBIterator(t *testing.T) {
	db := NewMemoryDB()
	for _, key := range []string{"pa1", "pa0", "pb0", "pa2"} {
		if err := db.Put([]byte(key), []byte(key)); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	it := db.NewIterator([]byte("pa"))
	defer it.Release()

	var keys []string
	for it.Next() {
		keys = append(keys, string(it.Key()))
	}
	want := []string{"pa0", "pa1", "pa2"}
	if len(keys) != len(want) {
		t.Fatalf("keys = %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("keys[%d] = %s, want %s", i, keys[i], want[i])
		}
	}
}

func TestMemoryDBClose(t *testing.T) {
	db := NewMemoryDB()
	if err := db.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := db.Put([]byte("k"), []byte("v")); err == nil {
		t.Fatal("put after close succeeded")
	}
	if _, err := db.Get([]byte("k")); err == nil {
		t.Fatal("get after close succeeded")
	}
}
