// Package chaindb is the ledger store: block records keyed by height, a
// hash index, coin and spend records keyed by coin id, and the derived
// created/spent/children indexes. One writer appends blocks; readers may
// look up and scan concurrently.
package chaindb

import (
	"github.com/chiadex/chiadex/internal/kvdb"
	"github.com/chiadex/chiadex/internal/logging"
	"github.com/chiadex/chiadex/internal/types"
)

type Store struct {
	db kvdb.KV
}

func New(db kvdb.KV) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

// ApplyBlock ingests one block: the record itself, its hash index entry,
// every created coin with its index entries, every spend with its index
// entry, and the peak, all in one synced batch. Preconditions are checked
// before anything is staged; any failure leaves the store exactly as it was.
func (s *Store) ApplyBlock(block *types.Block) error {
	peak, havePeak, err := s.PeakHeight()
	if err != nil {
		return err
	}
	want := uint32(0)
	if havePeak {
		want = peak + 1
	}
	if block.Height != want {
		return &SequenceError{Height: block.Height, Want: want}
	}

	if _, found, err := s.BlockHeight(block.Hash); err != nil {
		return err
	} else if found {
		return &ConflictError{Digest: block.Hash, Reason: "duplicate block hash"}
	}

	created := make(map[types.Bytes32]struct{}, len(block.Created))
	for _, c := range block.Created {
		if _, dup := created[c.CoinID]; dup {
			return &ConflictError{Digest: c.CoinID, Reason: "coin created twice in block"}
		}
		if _, found, err := s.Coin(c.CoinID); err != nil {
			return err
		} else if found {
			return &ConflictError{Digest: c.CoinID, Reason: "coin already exists"}
		}
		created[c.CoinID] = struct{}{}
	}

	spent := make(map[types.Bytes32]struct{}, len(block.Spent))
	for _, sp := range block.Spent {
		if _, dup := spent[sp.CoinID]; dup {
			return &ConflictError{Digest: sp.CoinID, Reason: "coin spent twice in block"}
		}
		if _, ephemeral := created[sp.CoinID]; !ephemeral {
			if _, found, err := s.Coin(sp.CoinID); err != nil {
				return err
			} else if !found {
				return &ConflictError{Digest: sp.CoinID, Reason: "spend of unknown coin"}
			}
			if _, found, err := s.CoinSpend(sp.CoinID); err != nil {
				return err
			} else if found {
				return &ConflictError{Digest: sp.CoinID, Reason: "coin already spent"}
			}
		}
		spent[sp.CoinID] = struct{}{}
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.Set(KeyBlock(block.Height), ValBlock(block.Record())); err != nil {
		return &StorageError{Op: "stage block", Err: err}
	}
	if err := b.Set(KeyBlockHash(block.Hash[:]), ValHeight(block.Height)); err != nil {
		return &StorageError{Op: "stage block", Err: err}
	}

	for _, c := range block.Created {
		rec := types.CoinRecord{
			ParentCoinID:  c.ParentCoinID,
			PuzzleHash:    c.PuzzleHash,
			Amount:        c.Amount,
			CreatedHeight: block.Height,
		}
		if err := b.Set(KeyCoin(c.CoinID[:]), ValCoin(&rec)); err != nil {
			return &StorageError{Op: "stage coin", Err: err}
		}
		if err := b.Set(KeyCreatedHeight(block.Height, c.CoinID[:]), nil); err != nil {
			return &StorageError{Op: "stage coin", Err: err}
		}
		if err := b.Set(KeyChildren(c.ParentCoinID[:], c.CoinID[:]), nil); err != nil {
			return &StorageError{Op: "stage coin", Err: err}
		}
	}

	for _, sp := range block.Spent {
		rec := types.CoinSpendRecord{
			SpentHeight:  block.Height,
			PuzzleReveal: sp.PuzzleReveal,
			Solution:     sp.Solution,
		}
		if err := b.Set(KeyCoinSpend(sp.CoinID[:]), ValSpend(&rec)); err != nil {
			return &StorageError{Op: "stage spend", Err: err}
		}
		if err := b.Set(KeySpentHeight(block.Height, sp.CoinID[:]), nil); err != nil {
			return &StorageError{Op: "stage spend", Err: err}
		}
	}

	if err := b.Set(KeyPeak(), ValHeight(block.Height)); err != nil {
		return &StorageError{Op: "stage peak", Err: err}
	}

	if err := b.Commit(); err != nil {
		logging.L.Err(err).Uint32("height", block.Height).Msg("failed to commit block batch")
		return &StorageError{Op: "commit block", Err: err}
	}
	return nil
}
