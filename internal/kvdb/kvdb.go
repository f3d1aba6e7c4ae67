// Package kvdb abstracts the physical storage engine behind the chain store.
// Anything with ordered iteration, point lookups and atomic multi-key batches
// can back it; pebble and goleveldb are wired in.
package kvdb

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("kvdb: not found")

const (
	EnginePebble  = "pebble"
	EngineLevelDB = "leveldb"
)

// KV is a single ordered keyspace. Get copies the value out; the returned
// slice is the caller's.
type KV interface {
	Get(key []byte) ([]byte, error)
	NewIterator(lower, upper []byte) (Iterator, error)
	NewBatch() Batch
	Close() error
}

// Batch collects writes and applies them atomically on Commit. Commits are
// synced; a crash after Commit returns keeps every key of the batch.
type Batch interface {
	Set(key, value []byte) error
	Commit() error
	Close() error
}

// Iterator walks keys in lexicographic order within [lower, upper). Key and
// Value are valid only until the next positioning call; copy to keep.
type Iterator interface {
	First() bool
	Last() bool
	Next() bool
	Prev() bool
	Valid() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// Open opens the keyspace at path with the named engine.
func Open(engine, path string) (KV, error) {
	switch engine {
	case EnginePebble, "":
		return OpenPebble(path)
	case EngineLevelDB:
		return OpenLevelDB(path)
	default:
		return nil, fmt.Errorf("unknown db engine %q", engine)
	}
}
