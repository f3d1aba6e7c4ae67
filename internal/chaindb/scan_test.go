package chaindb

import (
	"testing"

	"github.com/chiadex/chiadex/internal/types"
)

func heightsOf(entries []BlockEntry) []uint32 {
	out := make([]uint32, len(entries))
	for i, e := range entries {
		out[i] = e.Height
	}
	return out
}

func equalHeights(got, want []uint32) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestBlocksRangeAscending(t *testing.T) {
	withStores(t, func(t *testing.T, s *Store) {
		applyChain(t, s, 20)

		entries, err := s.BlocksRange(10, 15, Ascending)
		if err != nil {
			t.Fatal(err)
		}
		if got := heightsOf(entries); !equalHeights(got, []uint32{10, 11, 12, 13, 14}) {
			t.Fatalf("heights = %v", got)
		}
		for _, e := range entries {
			want := chainBlock(e.Height)
			if e.Record.Hash != want.Hash {
				t.Errorf("height %d carries wrong record", e.Height)
			}
		}
	})
}

func TestBlocksRangeDescending(t *testing.T) {
	withStores(t, func(t *testing.T, s *Store) {
		applyChain(t, s, 20)

		entries, err := s.BlocksRange(10, 15, Descending)
		if err != nil {
			t.Fatal(err)
		}
		if got := heightsOf(entries); !equalHeights(got, []uint32{14, 13, 12, 11, 10}) {
			t.Fatalf("heights = %v", got)
		}
	})
}

func TestBlocksRangeEmptyWindows(t *testing.T) {
	withStores(t, func(t *testing.T, s *Store) {
		applyChain(t, s, 5)

		for _, w := range [][2]uint32{{30, 40}, {5, 5}, {7, 3}} {
			entries, err := s.BlocksRange(w[0], w[1], Ascending)
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Errorf("window [%d,%d) returned %d entries", w[0], w[1], len(entries))
			}
		}

		// partially out of range: only the stored part comes back
		entries, err := s.BlocksRange(3, 10, Ascending)
		if err != nil {
			t.Fatal(err)
		}
		if got := heightsOf(entries); !equalHeights(got, []uint32{3, 4}) {
			t.Errorf("heights = %v", got)
		}
	})
}

func TestScanBlocksIsRestartable(t *testing.T) {
	withStores(t, func(t *testing.T, s *Store) {
		applyChain(t, s, 6)

		for run := 0; run < 2; run++ {
			sc, err := s.ScanBlocks(0, 6, Ascending)
			if err != nil {
				t.Fatal(err)
			}
			var got []uint32
			for sc.Next() {
				got = append(got, sc.Entry().Height)
			}
			if err := sc.Err(); err != nil {
				t.Fatal(err)
			}
			if err := sc.Close(); err != nil {
				t.Fatal(err)
			}
			if !equalHeights(got, []uint32{0, 1, 2, 3, 4, 5}) {
				t.Fatalf("run %d heights = %v", run, got)
			}
		}
	})
}

func TestScanCoinsAndSpends(t *testing.T) {
	withStores(t, func(t *testing.T, s *Store) {
		parent := digest("parent")
		coins := []types.Coin{
			newCoin("a", parent, 1),
			newCoin("b", parent, 2),
			newCoin("c", parent, 3),
		}
		b0 := chainBlock(0)
		b0.Created = coins
		if err := s.ApplyBlock(b0); err != nil {
			t.Fatal(err)
		}
		b1 := chainBlock(1)
		b1.Spent = []types.Spend{{CoinID: coins[1].CoinID, PuzzleReveal: types.Bytes{0x07}}}
		if err := s.ApplyBlock(b1); err != nil {
			t.Fatal(err)
		}

		cs, err := s.ScanCoins()
		if err != nil {
			t.Fatal(err)
		}
		seen := make(map[types.Bytes32]types.CoinRecord)
		for cs.Next() {
			e := cs.Entry()
			seen[e.CoinID] = e.Record
		}
		if err := cs.Err(); err != nil {
			t.Fatal(err)
		}
		cs.Close()
		if len(seen) != len(coins) {
			t.Fatalf("coin scan saw %d coins", len(seen))
		}
		for _, c := range coins {
			rec, ok := seen[c.CoinID]
			if !ok {
				t.Fatalf("coin scan missed %s", c.CoinID)
			}
			if rec.Amount != c.Amount || rec.CreatedHeight != 0 {
				t.Errorf("coin scan record = %+v", rec)
			}
		}

		ss, err := s.ScanSpends()
		if err != nil {
			t.Fatal(err)
		}
		var spends []SpendEntry
		for ss.Next() {
			spends = append(spends, ss.Entry())
		}
		if err := ss.Err(); err != nil {
			t.Fatal(err)
		}
		ss.Close()
		if len(spends) != 1 {
			t.Fatalf("spend scan saw %d spends", len(spends))
		}
		if spends[0].CoinID != coins[1].CoinID || spends[0].Record.SpentHeight != 1 {
			t.Errorf("spend scan entry = %+v", spends[0])
		}
	})
}
