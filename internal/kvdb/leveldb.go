package kvdb

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type levelKV struct {
	db *leveldb.DB
}

// OpenLevelDB opens (creating if needed) a goleveldb keyspace at path.
func OpenLevelDB(path string) (KV, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, err
	}
	return &levelKV{db: db}, nil
}

func (l *levelKV) Get(key []byte) ([]byte, error) {
	value, err := l.db.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return value, nil
}

func (l *levelKV) NewIterator(lower, upper []byte) (Iterator, error) {
	it := l.db.NewIterator(&util.Range{Start: lower, Limit: upper}, nil)
	return &levelIter{it: it}, nil
}

func (l *levelKV) NewBatch() Batch {
	return &levelBatch{db: l.db, b: new(leveldb.Batch)}
}

func (l *levelKV) Close() error {
	return l.db.Close()
}

type levelBatch struct {
	db *leveldb.DB
	b  *leveldb.Batch
}

func (b *levelBatch) Set(key, value []byte) error {
	b.b.Put(key, value)
	return nil
}

func (b *levelBatch) Commit() error {
	return b.db.Write(b.b, &opt.WriteOptions{Sync: true})
}

func (b *levelBatch) Close() error {
	b.b.Reset()
	return nil
}

type levelIter struct {
	it iterator.Iterator
}

func (i *levelIter) First() bool { return i.it.First() }
func (i *levelIter) Last() bool  { return i.it.Last() }
func (i *levelIter) Next() bool  { return i.it.Next() }
func (i *levelIter) Prev() bool  { return i.it.Prev() }
func (i *levelIter) Valid() bool { return i.it.Valid() }

func (i *levelIter) Key() []byte   { return i.it.Key() }
func (i *levelIter) Value() []byte { return i.it.Value() }
func (i *levelIter) Error() error  { return i.it.Error() }

func (i *levelIter) Close() error {
	err := i.it.Error()
	i.it.Release()
	return err
}
