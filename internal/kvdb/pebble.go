package kvdb

import (
	"errors"

	"github.com/cockroachdb/pebble"
)

type pebbleKV struct {
	db *pebble.DB
}

// OpenPebble opens (creating if needed) a pebble keyspace at path.
func OpenPebble(path string) (KV, error) {
	opts := (&pebble.Options{}).EnsureDefaults()
	opts.Cache = pebble.NewCache(256 << 20)
	opts.BytesPerSync = 1 << 22
	opts.MaxConcurrentCompactions = func() int { return 4 }

	db, err := pebble.Open(path, opts)
	if err != nil {
		return nil, err
	}
	return &pebbleKV{db: db}, nil
}

func (p *pebbleKV) Get(key []byte) ([]byte, error) {
	value, closer, err := p.db.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	out := make([]byte, len(value))
	copy(out, value)
	if err := closer.Close(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *pebbleKV) NewIterator(lower, upper []byte) (Iterator, error) {
	it, err := p.db.NewIter(&pebble.IterOptions{LowerBound: lower, UpperBound: upper})
	if err != nil {
		return nil, err
	}
	return &pebbleIter{it: it}, nil
}

func (p *pebbleKV) NewBatch() Batch {
	return &pebbleBatch{b: p.db.NewBatch()}
}

func (p *pebbleKV) Close() error {
	return p.db.Close()
}

type pebbleBatch struct {
	b *pebble.Batch
}

func (b *pebbleBatch) Set(key, value []byte) error {
	return b.b.Set(key, value, nil)
}

func (b *pebbleBatch) Commit() error {
	return b.b.Commit(pebble.Sync)
}

func (b *pebbleBatch) Close() error {
	return b.b.Close()
}

type pebbleIter struct {
	it *pebble.Iterator
}

func (i *pebbleIter) First() bool { return i.it.First() }
func (i *pebbleIter) Last() bool  { return i.it.Last() }
func (i *pebbleIter) Next() bool  { return i.it.Next() }
func (i *pebbleIter) Prev() bool  { return i.it.Prev() }
func (i *pebbleIter) Valid() bool { return i.it.Valid() }

func (i *pebbleIter) Key() []byte   { return i.it.Key() }
func (i *pebbleIter) Value() []byte { return i.it.Value() }
func (i *pebbleIter) Error() error  { return i.it.Error() }
func (i *pebbleIter) Close() error  { return i.it.Close() }
