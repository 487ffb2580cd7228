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

// Package trustdb defines the key-value store interface the registry
// persists through, with a LevelDB backend for nodes and an in-memory
// backend for tests.
package trustdb

import "errors"

// ErrNotFound is returned when a key is absent from the database.
var ErrNotFound = errors.New("trustdb: not found")

// KeyValueReader wraps the Has and Get method of a backing data store.
type KeyValueReader interface {
	// Has retrieves if a key is present in the key-value data store.
	Has(key []byte) (bool, error)

	// Get retrieves the given key if it's present in the key-value data store.
	Get(key []byte) ([]byte, error)
}

// KeyValueWriter wraps the Put method of a backing data store.
type KeyValueWriter interface {
	// Put inserts the given value into the key-value data store.
	Put(key []byte, value []byte) error

	// Delete removes the key from the key-value data store.
	Delete(key []byte) error
}

// Iterator walks a key-value store in ascending key order. It must be
// released after use.
type Iterator interface {
	// Next moves the iterator to the next key/value pair. It returns
	// false when the iterator is exhausted.
	Next() bool

	// Key returns the key of the current pair. The slice is only valid
	// until the next call to Next.
	Key() []byte

	// Value returns the value of the current pair. The slice is only
	// valid until the next call to Next.
	Value() []byte

	// Release frees any resources held by the iterator.
	Release()
}

// Iteratee wraps the NewIterator method of a backing data store.
type Iteratee interface {
	// NewIterator creates an iterator over the subset of keys starting
	// with the given prefix.
	NewIterator(prefix []byte) Iterator
}

// Database is the full key-value store contract the registry relies on.
type Database interface {
	KeyValueReader
	KeyValueWriter
	Iteratee

	// Close releases all held resources.
	Close() error
}
