package chaindb

import (
	"bytes"
	"encoding/binary"

	"github.com/chiadex/chiadex/internal/kvdb"
	"github.com/chiadex/chiadex/internal/types"
)

type Direction int

const (
	Ascending Direction = iota
	Descending
)

// rangeScan walks one keyspace window [lb, ub) in the given direction. Each
// scan owns a fresh iterator; it reads a consistent snapshot and holds no
// lock beyond its own lifetime. An inverted or empty window scans nothing.
type rangeScan struct {
	it      kvdb.Iterator
	dir     Direction
	started bool
}

func (s *Store) rangeScan(op string, lb, ub []byte, dir Direction) (*rangeScan, error) {
	if ub != nil && bytes.Compare(lb, ub) >= 0 {
		return &rangeScan{}, nil
	}
	it, err := s.db.NewIterator(lb, ub)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	return &rangeScan{it: it, dir: dir}, nil
}

// Next positions on the next entry. Key and Value are valid only while Next
// reports true, and only until the following call.
func (r *rangeScan) Next() bool {
	if r.it == nil {
		return false
	}
	if !r.started {
		r.started = true
		if r.dir == Descending {
			return r.it.Last()
		}
		return r.it.First()
	}
	if r.dir == Descending {
		return r.it.Prev()
	}
	return r.it.Next()
}

func (r *rangeScan) Key() []byte   { return r.it.Key() }
func (r *rangeScan) Value() []byte { return r.it.Value() }

func (r *rangeScan) Err() error {
	if r.it == nil {
		return nil
	}
	return r.it.Error()
}

func (r *rangeScan) Close() error {
	if r.it == nil {
		return nil
	}
	return r.it.Close()
}

// ---------------- Blocks ----------------

type BlockEntry struct {
	Height uint32
	Record types.BlockRecord
}

// BlockScan yields blocks with height in [start, end), ascending or the
// mirrored window descending.
type BlockScan struct {
	rs  *rangeScan
	cur BlockEntry
	err error
}

func (s *Store) ScanBlocks(start, end uint32, dir Direction) (*BlockScan, error) {
	lb, ub := BoundsBlock(start, end)
	rs, err := s.rangeScan("block scan", lb, ub, dir)
	if err != nil {
		return nil, err
	}
	return &BlockScan{rs: rs}, nil
}

// ScanAllBlocks walks the whole block keyspace ascending.
func (s *Store) ScanAllBlocks() (*BlockScan, error) {
	lb, ub := BoundsBlockAll()
	rs, err := s.rangeScan("block scan", lb, ub, Ascending)
	if err != nil {
		return nil, err
	}
	return &BlockScan{rs: rs}, nil
}

func (sc *BlockScan) Next() bool {
	if sc.err != nil || !sc.rs.Next() {
		return false
	}
	k := sc.rs.Key()
	sc.cur.Height = binary.BigEndian.Uint32(k[1:])
	rec, err := ParseBlockValue(sc.rs.Value())
	if err != nil {
		sc.err = &StorageError{Op: "block scan", Err: err}
		return false
	}
	sc.cur.Record = *rec
	return true
}

// Entry returns the block Next positioned on.
func (sc *BlockScan) Entry() BlockEntry { return sc.cur }

func (sc *BlockScan) Err() error {
	if sc.err != nil {
		return sc.err
	}
	if err := sc.rs.Err(); err != nil {
		return &StorageError{Op: "block scan", Err: err}
	}
	return nil
}

func (sc *BlockScan) Close() error { return sc.rs.Close() }

// BlocksRange collects ScanBlocks into a slice.
func (s *Store) BlocksRange(start, end uint32, dir Direction) ([]BlockEntry, error) {
	sc, err := s.ScanBlocks(start, end, dir)
	if err != nil {
		return nil, err
	}
	defer sc.Close()

	var out []BlockEntry
	for sc.Next() {
		out = append(out, sc.Entry())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ---------------- Coins ----------------

type CoinEntry struct {
	CoinID types.Bytes32
	Record types.CoinRecord
}

// CoinScan walks the whole coin keyspace in id order.
type CoinScan struct {
	rs  *rangeScan
	cur CoinEntry
	err error
}

func (s *Store) ScanCoins() (*CoinScan, error) {
	lb, ub := BoundsCoinAll()
	rs, err := s.rangeScan("coin scan", lb, ub, Ascending)
	if err != nil {
		return nil, err
	}
	return &CoinScan{rs: rs}, nil
}

func (sc *CoinScan) Next() bool {
	if sc.err != nil || !sc.rs.Next() {
		return false
	}
	k := sc.rs.Key()
	copy(sc.cur.CoinID[:], k[1:])
	rec, err := ParseCoinValue(sc.rs.Value())
	if err != nil {
		sc.err = &StorageError{Op: "coin scan", Err: err}
		return false
	}
	sc.cur.Record = *rec
	return true
}

func (sc *CoinScan) Entry() CoinEntry { return sc.cur }

func (sc *CoinScan) Err() error {
	if sc.err != nil {
		return sc.err
	}
	if err := sc.rs.Err(); err != nil {
		return &StorageError{Op: "coin scan", Err: err}
	}
	return nil
}

func (sc *CoinScan) Close() error { return sc.rs.Close() }

// ---------------- Spends ----------------

type SpendEntry struct {
	CoinID types.Bytes32
	Record types.CoinSpendRecord
}

// SpendScan walks the whole coin-spend keyspace in id order.
type SpendScan struct {
	rs  *rangeScan
	cur SpendEntry
	err error
}

func (s *Store) ScanSpends() (*SpendScan, error) {
	lb, ub := BoundsCoinSpendAll()
	rs, err := s.rangeScan("spend scan", lb, ub, Ascending)
	if err != nil {
		return nil, err
	}
	return &SpendScan{rs: rs}, nil
}

func (sc *SpendScan) Next() bool {
	if sc.err != nil || !sc.rs.Next() {
		return false
	}
	k := sc.rs.Key()
	copy(sc.cur.CoinID[:], k[1:])
	rec, err := ParseSpendValue(sc.rs.Value())
	if err != nil {
		sc.err = &StorageError{Op: "spend scan", Err: err}
		return false
	}
	sc.cur.Record = *rec
	return true
}

func (sc *SpendScan) Entry() SpendEntry { return sc.cur }

func (sc *SpendScan) Err() error {
	if sc.err != nil {
		return sc.err
	}
	if err := sc.rs.Err(); err != nil {
		return &StorageError{Op: "spend scan", Err: err}
	}
	return nil
}

func (sc *SpendScan) Close() error { return sc.rs.Close() }
