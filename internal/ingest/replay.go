// Package ingest feeds recorded block bundles into the store. Input is
// JSONL: one block bundle per line, heights ascending.
package ingest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/logging"
	"github.com/chiadex/chiadex/internal/metrics"
	"github.com/chiadex/chiadex/internal/types"
)

// Lines can carry whole blocks worth of coins and spend payloads.
const maxLineBytes = 64 << 20

// Stats describe one replay run. On an aborted run they cover the work done
// up to the stop.
type Stats struct {
	Applied    int
	Skipped    int
	PeakHeight uint32
}

type Replayer struct {
	store *chaindb.Store
	ing   *metrics.Ingester
}

func NewReplayer(store *chaindb.Store) *Replayer {
	return &Replayer{store: store, ing: metrics.NewIngester()}
}

// Replay applies every bundle in r. Bundles at or below the stored peak are
// skipped, so a restarted replay resumes where the previous one stopped. The
// first malformed line or rejected block ends the run.
func (rp *Replayer) Replay(ctx context.Context, r io.Reader) (*Stats, error) {
	peak, havePeak, err := rp.store.PeakHeight()
	if err != nil {
		return nil, err
	}
	if havePeak {
		logging.L.Info().Uint32("peak", peak).Msg("resuming replay above stored peak")
	}

	stats := &Stats{PeakHeight: peak}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1<<20), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		select {
		case <-ctx.Done():
			return stats, ctx.Err()
		default:
		}

		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		var block types.Block
		if err := json.Unmarshal(line, &block); err != nil {
			logging.L.Err(err).Int("line", lineNo).Msg("could not decode block bundle")
			return stats, fmt.Errorf("line %d: %w", lineNo, err)
		}

		if havePeak && block.Height <= peak {
			stats.Skipped++
			continue
		}

		started := time.Now()
		err := rp.store.ApplyBlock(&block)
		rp.ing.ObserveBlock(err, len(block.Created)+len(block.Spent), started)
		if err != nil {
			logging.L.Err(err).Uint32("height", block.Height).Msg("block rejected during replay")
			return stats, fmt.Errorf("line %d: %w", lineNo, err)
		}

		peak = block.Height
		havePeak = true
		stats.Applied++
		stats.PeakHeight = peak
		rp.ing.SetPeakHeight(peak)

		if stats.Applied%1000 == 0 {
			logging.L.Info().
				Uint32("height", peak).
				Int("applied", stats.Applied).
				Msg("replay progress")
		}
	}
	if err := scanner.Err(); err != nil {
		logging.L.Err(err).Msg("error reading bundle stream")
		return stats, err
	}

	logging.L.Info().
		Int("applied", stats.Applied).
		Int("skipped", stats.Skipped).
		Uint32("peak", stats.PeakHeight).
		Msg("replay finished")
	return stats, nil
}

// ReplayFile replays the bundle stream at path.
func (rp *Replayer) ReplayFile(ctx context.Context, path string) (*Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		logging.L.Err(err).Str("path", path).Msg("could not open bundle stream")
		return nil, err
	}
	defer f.Close()
	return rp.Replay(ctx, f)
}
