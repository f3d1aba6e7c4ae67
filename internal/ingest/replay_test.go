package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/kvdb"
	"github.com/chiadex/chiadex/internal/types"
)

func newTestStore(t *testing.T) *chaindb.Store {
	t.Helper()
	db, err := kvdb.Open(kvdb.EnginePebble, t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	s := chaindb.New(db)
	t.Cleanup(func() { s.Close() })
	return s
}

func digest(tag string) types.Bytes32 {
	return sha256.Sum256([]byte(tag))
}

func chainBlock(height uint32) *types.Block {
	b := &types.Block{
		Height:    height,
		Hash:      digest(fmt.Sprintf("block-%d", height)),
		Timestamp: 1700000000 + uint64(height)*18,
	}
	if height > 0 {
		b.PrevHash = digest(fmt.Sprintf("block-%d", height-1))
	}
	return b
}

func bundleStream(t *testing.T, blocks ...*types.Block) string {
	t.Helper()
	var sb strings.Builder
	for _, b := range blocks {
		line, err := json.Marshal(b)
		if err != nil {
			t.Fatal(err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

func TestReplayAppliesStream(t *testing.T) {
	s := newTestStore(t)

	coin := types.Coin{
		CoinID:       types.CoinID(digest("parent"), digest("puzzle"), 7),
		ParentCoinID: digest("parent"),
		PuzzleHash:   digest("puzzle"),
		Amount:       7,
	}
	b1 := chainBlock(1)
	b1.Created = []types.Coin{coin}

	stream := bundleStream(t, chainBlock(0), b1, chainBlock(2))

	stats, err := NewReplayer(s).Replay(context.Background(), strings.NewReader(stream))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Applied != 3 || stats.Skipped != 0 || stats.PeakHeight != 2 {
		t.Fatalf("stats = %+v", stats)
	}

	peak, found, err := s.PeakHeight()
	if err != nil || !found || peak != 2 {
		t.Fatalf("peak = %d found = %t err = %v", peak, found, err)
	}
	rec, found, err := s.Coin(coin.CoinID)
	if err != nil || !found {
		t.Fatalf("coin missing: found = %t err = %v", found, err)
	}
	if rec.Amount != 7 || rec.CreatedHeight != 1 {
		t.Errorf("coin record = %+v", rec)
	}
}

func TestReplayResumesAboveStoredPeak(t *testing.T) {
	s := newTestStore(t)
	for h := uint32(0); h < 3; h++ {
		if err := s.ApplyBlock(chainBlock(h)); err != nil {
			t.Fatal(err)
		}
	}

	stream := bundleStream(t,
		chainBlock(0), chainBlock(1), chainBlock(2), chainBlock(3), chainBlock(4))

	stats, err := NewReplayer(s).Replay(context.Background(), strings.NewReader(stream))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Applied != 2 || stats.Skipped != 3 || stats.PeakHeight != 4 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestReplayToleratesBlankLines(t *testing.T) {
	s := newTestStore(t)
	stream := "\n" + bundleStream(t, chainBlock(0)) + "\n\n" + bundleStream(t, chainBlock(1))

	stats, err := NewReplayer(s).Replay(context.Background(), strings.NewReader(stream))
	if err != nil {
		t.Fatal(err)
	}
	if stats.Applied != 2 {
		t.Fatalf("applied = %d, want 2", stats.Applied)
	}
}

func TestReplayStopsOnMalformedLine(t *testing.T) {
	s := newTestStore(t)
	stream := bundleStream(t, chainBlock(0)) + "not json\n" + bundleStream(t, chainBlock(1))

	stats, err := NewReplayer(s).Replay(context.Background(), strings.NewReader(stream))
	if err == nil {
		t.Fatal("malformed line accepted")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error does not name the line: %v", err)
	}
	if stats.Applied != 1 {
		t.Errorf("applied = %d, want 1", stats.Applied)
	}
}

func TestReplayStopsOnSequenceGap(t *testing.T) {
	s := newTestStore(t)
	stream := bundleStream(t, chainBlock(0), chainBlock(5))

	_, err := NewReplayer(s).Replay(context.Background(), strings.NewReader(stream))
	var seqErr *chaindb.SequenceError
	if !errors.As(err, &seqErr) {
		t.Fatalf("err = %v, want sequence error", err)
	}
	if seqErr.Height != 5 || seqErr.Want != 1 {
		t.Errorf("sequence error = %+v", seqErr)
	}

	peak, _, err := s.PeakHeight()
	if err != nil || peak != 0 {
		t.Errorf("peak = %d err = %v, want 0", peak, err)
	}
}

func TestReplayHonorsContext(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats, err := NewReplayer(s).Replay(ctx, strings.NewReader(bundleStream(t, chainBlock(0))))
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if stats.Applied != 0 {
		t.Errorf("applied = %d, want 0", stats.Applied)
	}
}
