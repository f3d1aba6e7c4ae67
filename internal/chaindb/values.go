package chaindb

import (
	"encoding/binary"
	"errors"

	"github.com/chiadex/chiadex/internal/types"
)

// ---------------- Values ----------------

// ValHeight encodes a bare height, used for the peak key and the hash index.
func ValHeight(height uint32) []byte {
	v := make([]byte, SizeHeight)
	be32(height, v)
	return v
}

func ParseHeightValue(v []byte) (uint32, error) {
	if len(v) != SizeHeight {
		return 0, errors.New("bad height value length")
	}
	return binary.BigEndian.Uint32(v), nil
}

// ValBlock encodes hash(32) | prev(32) | timestamp LE64.
func ValBlock(rec *types.BlockRecord) []byte {
	v := make([]byte, SizeHash+SizeHash+SizeTime)
	copy(v[:SizeHash], rec.Hash[:])
	copy(v[SizeHash:2*SizeHash], rec.PrevHash[:])
	le64(rec.Timestamp, v[2*SizeHash:])
	return v
}

func ParseBlockValue(v []byte) (*types.BlockRecord, error) {
	if len(v) != SizeHash+SizeHash+SizeTime {
		return nil, errors.New("bad block value length")
	}
	var rec types.BlockRecord
	copy(rec.Hash[:], v[:SizeHash])
	copy(rec.PrevHash[:], v[SizeHash:2*SizeHash])
	rec.Timestamp = binary.LittleEndian.Uint64(v[2*SizeHash:])
	return &rec, nil
}

// ValCoin encodes parent(32) | puzzle(32) | amount LE64 | created BE32.
func ValCoin(rec *types.CoinRecord) []byte {
	v := make([]byte, SizeHash+SizeHash+SizeAmt+SizeHeight)
	copy(v[:SizeHash], rec.ParentCoinID[:])
	copy(v[SizeHash:2*SizeHash], rec.PuzzleHash[:])
	le64(rec.Amount, v[2*SizeHash:2*SizeHash+SizeAmt])
	be32(rec.CreatedHeight, v[2*SizeHash+SizeAmt:])
	return v
}

func ParseCoinValue(v []byte) (*types.CoinRecord, error) {
	if len(v) != SizeHash+SizeHash+SizeAmt+SizeHeight {
		return nil, errors.New("bad coin value length")
	}
	var rec types.CoinRecord
	copy(rec.ParentCoinID[:], v[:SizeHash])
	copy(rec.PuzzleHash[:], v[SizeHash:2*SizeHash])
	rec.Amount = binary.LittleEndian.Uint64(v[2*SizeHash : 2*SizeHash+SizeAmt])
	rec.CreatedHeight = binary.BigEndian.Uint32(v[2*SizeHash+SizeAmt:])
	return &rec, nil
}

// ValSpend encodes spent BE32 | reveal len BE32 | reveal | solution len BE32 |
// solution. The payloads are opaque and may be empty.
func ValSpend(rec *types.CoinSpendRecord) []byte {
	v := make([]byte, SizeHeight+SizeLen+len(rec.PuzzleReveal)+SizeLen+len(rec.Solution))
	be32(rec.SpentHeight, v[:SizeHeight])
	off := SizeHeight
	be32(uint32(len(rec.PuzzleReveal)), v[off:off+SizeLen])
	off += SizeLen
	copy(v[off:], rec.PuzzleReveal)
	off += len(rec.PuzzleReveal)
	be32(uint32(len(rec.Solution)), v[off:off+SizeLen])
	off += SizeLen
	copy(v[off:], rec.Solution)
	return v
}

func ParseSpendValue(v []byte) (*types.CoinSpendRecord, error) {
	if len(v) < SizeHeight+2*SizeLen {
		return nil, errors.New("bad spend value length")
	}
	var rec types.CoinSpendRecord
	rec.SpentHeight = binary.BigEndian.Uint32(v[:SizeHeight])
	off := SizeHeight

	n := int(binary.BigEndian.Uint32(v[off : off+SizeLen]))
	off += SizeLen
	if len(v) < off+n+SizeLen {
		return nil, errors.New("bad spend value length")
	}
	rec.PuzzleReveal = make(types.Bytes, n)
	copy(rec.PuzzleReveal, v[off:off+n])
	off += n

	n = int(binary.BigEndian.Uint32(v[off : off+SizeLen]))
	off += SizeLen
	if len(v) != off+n {
		return nil, errors.New("bad spend value length")
	}
	rec.Solution = make(types.Bytes, n)
	copy(rec.Solution, v[off:off+n])
	return &rec, nil
}
