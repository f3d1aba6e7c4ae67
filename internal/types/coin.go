package types

import (
	"crypto/sha256"
	"encoding/binary"
)

// Coin is a coin creation event carried by a block. The created height is
// assigned by the engine from the ingesting block.
type Coin struct {
	CoinID       Bytes32 `json:"coin_id"`
	ParentCoinID Bytes32 `json:"parent_coin_id"`
	PuzzleHash   Bytes32 `json:"puzzle_hash"`
	Amount       uint64  `json:"amount"`
}

// Spend is a coin spend event carried by a block.
type Spend struct {
	CoinID       Bytes32 `json:"coin_id"`
	PuzzleReveal Bytes   `json:"puzzle_reveal"`
	Solution     Bytes   `json:"solution"`
}

// CoinRecord is the stored form of a coin, keyed by coin id.
type CoinRecord struct {
	ParentCoinID  Bytes32 `json:"parent_coin_id"`
	PuzzleHash    Bytes32 `json:"puzzle_hash"`
	Amount        uint64  `json:"amount"`
	CreatedHeight uint32  `json:"created_height"`
}

// CoinSpendRecord is the stored form of a coin spend, keyed by the spent
// coin's id. At most one exists per coin.
type CoinSpendRecord struct {
	SpentHeight  uint32 `json:"spent_height"`
	PuzzleReveal Bytes  `json:"puzzle_reveal"`
	Solution     Bytes  `json:"solution"`
}

// CoinID derives a coin's id: the SHA-256 of the parent coin id, the puzzle
// hash and the canonical amount encoding. The store treats ids as opaque;
// this helper is for producers and tests.
func CoinID(parent, puzzleHash Bytes32, amount uint64) Bytes32 {
	h := sha256.New()
	h.Write(parent[:])
	h.Write(puzzleHash[:])
	h.Write(amountBytes(amount))
	var id Bytes32
	copy(id[:], h.Sum(nil))
	return id
}

// amountBytes encodes an amount as a minimal big-endian two's-complement
// integer: empty for zero, no leading zero bytes except the one needed to
// keep the top bit from reading as a sign bit.
func amountBytes(amount uint64) []byte {
	if amount == 0 {
		return nil
	}
	var buf [9]byte
	binary.BigEndian.PutUint64(buf[1:], amount)
	i := 1
	for i < 8 && buf[i] == 0 {
		i++
	}
	if buf[i]&0x80 != 0 {
		i--
	}
	return buf[i:]
}
