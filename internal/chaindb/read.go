package chaindb

import (
	"errors"

	"github.com/chiadex/chiadex/internal/kvdb"
	"github.com/chiadex/chiadex/internal/types"
)

// get performs a point lookup. Absence comes back as found=false, never as
// an error; anything else is a storage fault.
func (s *Store) get(op string, key []byte) ([]byte, bool, error) {
	val, err := s.db.Get(key)
	if err != nil {
		if errors.Is(err, kvdb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, &StorageError{Op: op, Err: err}
	}
	return val, true, nil
}

// PeakHeight returns the highest ingested height. found is false only on an
// empty store.
func (s *Store) PeakHeight() (uint32, bool, error) {
	val, found, err := s.get("peak lookup", KeyPeak())
	if err != nil || !found {
		return 0, false, err
	}
	h, err := ParseHeightValue(val)
	if err != nil {
		return 0, false, &StorageError{Op: "peak lookup", Err: err}
	}
	return h, true, nil
}

func (s *Store) Block(height uint32) (*types.BlockRecord, bool, error) {
	val, found, err := s.get("block lookup", KeyBlock(height))
	if err != nil || !found {
		return nil, false, err
	}
	rec, err := ParseBlockValue(val)
	if err != nil {
		return nil, false, &StorageError{Op: "block lookup", Err: err}
	}
	return rec, true, nil
}

func (s *Store) BlockHeight(hash types.Bytes32) (uint32, bool, error) {
	val, found, err := s.get("block height lookup", KeyBlockHash(hash[:]))
	if err != nil || !found {
		return 0, false, err
	}
	h, err := ParseHeightValue(val)
	if err != nil {
		return 0, false, &StorageError{Op: "block height lookup", Err: err}
	}
	return h, true, nil
}

func (s *Store) Coin(id types.Bytes32) (*types.CoinRecord, bool, error) {
	val, found, err := s.get("coin lookup", KeyCoin(id[:]))
	if err != nil || !found {
		return nil, false, err
	}
	rec, err := ParseCoinValue(val)
	if err != nil {
		return nil, false, &StorageError{Op: "coin lookup", Err: err}
	}
	return rec, true, nil
}

func (s *Store) CoinSpend(id types.Bytes32) (*types.CoinSpendRecord, bool, error) {
	val, found, err := s.get("coin spend lookup", KeyCoinSpend(id[:]))
	if err != nil || !found {
		return nil, false, err
	}
	rec, err := ParseSpendValue(val)
	if err != nil {
		return nil, false, &StorageError{Op: "coin spend lookup", Err: err}
	}
	return rec, true, nil
}

// idSuffixes walks [lb, ub) and collects the trailing 32 bytes of every key.
func (s *Store) idSuffixes(op string, lb, ub []byte) ([]types.Bytes32, error) {
	it, err := s.db.NewIterator(lb, ub)
	if err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	defer it.Close()

	var ids []types.Bytes32
	for ok := it.First(); ok; ok = it.Next() {
		k := it.Key()
		if len(k) < SizeHash {
			return nil, &StorageError{Op: op, Err: errors.New("index key too short")}
		}
		var id types.Bytes32
		copy(id[:], k[len(k)-SizeHash:])
		ids = append(ids, id)
	}
	if err := it.Error(); err != nil {
		return nil, &StorageError{Op: op, Err: err}
	}
	return ids, nil
}

// CoinsByCreatedHeight lists the ids of coins created at height, in id order.
func (s *Store) CoinsByCreatedHeight(height uint32) ([]types.Bytes32, error) {
	lb, ub := BoundsCreatedHeight(height)
	return s.idSuffixes("created-height scan", lb, ub)
}

// CoinsBySpentHeight lists the ids of coins spent at height, in id order.
func (s *Store) CoinsBySpentHeight(height uint32) ([]types.Bytes32, error) {
	lb, ub := BoundsSpentHeight(height)
	return s.idSuffixes("spent-height scan", lb, ub)
}

// CoinsByParent lists the ids of coins whose parent is parent, in id order.
func (s *Store) CoinsByParent(parent types.Bytes32) ([]types.Bytes32, error) {
	lb, ub := BoundsChildren(parent[:])
	return s.idSuffixes("children scan", lb, ub)
}
