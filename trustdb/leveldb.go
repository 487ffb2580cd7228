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
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/trustmesh/go-trustmesh/log"
)

const (
	// minCache is the minimum amount of memory in megabytes to allocate
	// to leveldb.
	minCache = 16

	// minHandles is the minimum number of file handles to allocate to
	// leveldb.
	minHandles = 16
)

// LevelDB is a persistent key-value store backed by goleveldb.
type LevelDB struct {
	fn  string
	db  *leveldb.DB
	log log.Logger
}

// NewLevelDB opens (or creates) a LevelDB database at the given path.
func NewLevelDB(file string, cache int, handles int) (*LevelDB, error) {
	if cache < minCache {
		cache = minCache
	}
	if handles < minHandles {
		handles = minHandles
	}
	logger := log.New("database", file)
	logger.Info("Allocated cache and file handles", "cache", cache, "handles", handles)

	db, err := leveldb.OpenFile(file, &opt.Options{
		OpenFilesCacheCapacity: handles,
		BlockCacheCapacity:     cache / 2 * opt.MiB,
		WriteBuffer:            cache / 4 * opt.MiB, // Two of these are used internally
		Filter:                 filter.NewBloomFilter(10),
	})
	if _, corrupted := err.(*errors.ErrCorrupted); corrupted {
		db, err = leveldb.RecoverFile(file, nil)
	}
	if err != nil {
		return nil, err
	}
	return &LevelDB{fn: file, db: db, log: logger}, nil
}

// Has retrieves if a key is present in the key-value store.
func (db *LevelDB) Has(key []byte) (bool, error) {
	return db.db.Has(key, nil)
}

// Get retrieves the given key if it's present in the key-value store.
func (db *LevelDB) Get(key []byte) ([]byte, error) {
	dat, err := db.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return dat, err
}

// Put inserts the given value into the key-value store.
func (db *LevelDB) Put(key []byte, value []byte) error {
	return db.db.Put(key, value, nil)
}

// Delete removes the key from the key-value store.
func (db *LevelDB) Delete(key []byte) error {
	return db.db.Delete(key, nil)
}

// NewIterator creates an iterator over the subset of keys starting with
// the given prefix.
func (db *LevelDB) NewIterator(prefix []byte) Iterator {
	return &ldbIterator{iter: db.db.NewIterator(util.BytesPrefix(prefix), nil)}
}

// Close flushes pending writes and closes the underlying store.
func (db *LevelDB) Close() error {
	db.log.Info("Database closed")
	return db.db.Close()
}

type ldbIterator struct {
	iter iterator.Iterator
}

func (it *ldbIterator) Next() bool    { return it.iter.Next() }
func (it *ldbIterator) Key() []byte   { return it.iter.Key() }
func (it *ldbIterator) Value() []byte { return it.iter.Value() }
func (it *ldbIterator) Release()      { it.iter.Release() }
