package chaindb

import (
	"encoding/binary"
	"math"
)

const (
	SizeHash   = 32
	SizeHeight = 4
	SizeAmt    = 8
	SizeTime   = 8
	SizeLen    = 4
)

// Prefix Keys "K". One byte per keyspace; key bytes after the prefix sort
// lexicographically in logical order (big-endian heights, raw digests).
const (
	KPeak          = 0x00
	KBlock         = 0x01
	KBlockHash     = 0x02
	KCoin          = 0x03
	KCoinSpend     = 0x04
	KCreatedHeight = 0x05
	KSpentHeight   = 0x06
	KChildren      = 0x07
)

func be32(u uint32, b []byte) { binary.BigEndian.PutUint32(b, u) }
func le64(u uint64, b []byte) { binary.LittleEndian.PutUint64(b, u) }

// ---------------- Keys ----------------

func KeyPeak() []byte {
	return []byte{KPeak}
}

func KeyBlock(height uint32) []byte {
	k := make([]byte, 1+SizeHeight)
	k[0] = KBlock
	be32(height, k[1:])
	return k
}

// BoundsBlock covers block keys with height in [start, end).
func BoundsBlock(start, end uint32) (lb, ub []byte) {
	lb = KeyBlock(start)
	ub = KeyBlock(end)
	return
}

// BoundsBlockAll covers the whole block keyspace.
func BoundsBlockAll() (lb, ub []byte) {
	return []byte{KBlock}, keyUpperBound([]byte{KBlock})
}

func KeyBlockHash(hash []byte) []byte {
	k := make([]byte, 1+SizeHash)
	k[0] = KBlockHash
	copy(k[1:], hash)
	return k
}

func KeyCoin(id []byte) []byte {
	k := make([]byte, 1+SizeHash)
	k[0] = KCoin
	copy(k[1:], id)
	return k
}

// BoundsCoinAll covers the whole coin keyspace.
func BoundsCoinAll() (lb, ub []byte) {
	return []byte{KCoin}, keyUpperBound([]byte{KCoin})
}

func KeyCoinSpend(id []byte) []byte {
	k := make([]byte, 1+SizeHash)
	k[0] = KCoinSpend
	copy(k[1:], id)
	return k
}

// BoundsCoinSpendAll covers the whole coin-spend keyspace.
func BoundsCoinSpendAll() (lb, ub []byte) {
	return []byte{KCoinSpend}, keyUpperBound([]byte{KCoinSpend})
}

func KeyCreatedHeight(height uint32, id []byte) []byte {
	k := make([]byte, 1+SizeHeight+SizeHash)
	k[0] = KCreatedHeight
	be32(height, k[1:1+SizeHeight])
	copy(k[1+SizeHeight:], id)
	return k
}

// BoundsCreatedHeight covers every created-height entry at exactly height.
func BoundsCreatedHeight(height uint32) (lb, ub []byte) {
	return heightBounds(KCreatedHeight, height)
}

func KeySpentHeight(height uint32, id []byte) []byte {
	k := make([]byte, 1+SizeHeight+SizeHash)
	k[0] = KSpentHeight
	be32(height, k[1:1+SizeHeight])
	copy(k[1+SizeHeight:], id)
	return k
}

// BoundsSpentHeight covers every spent-height entry at exactly height.
func BoundsSpentHeight(height uint32) (lb, ub []byte) {
	return heightBounds(KSpentHeight, height)
}

func KeyChildren(parent, id []byte) []byte {
	k := make([]byte, 1+SizeHash+SizeHash)
	k[0] = KChildren
	copy(k[1:1+SizeHash], parent)
	copy(k[1+SizeHash:], id)
	return k
}

// BoundsChildren covers every child entry under parent.
func BoundsChildren(parent []byte) (lb, ub []byte) {
	lb = make([]byte, 1+SizeHash)
	lb[0] = KChildren
	copy(lb[1:], parent)
	ub = keyUpperBound(lb)
	return
}

// ---------------- Bounds helpers ----------------

func heightBounds(prefix byte, height uint32) (lb, ub []byte) {
	lb = make([]byte, 1+SizeHeight)
	lb[0] = prefix
	be32(height, lb[1:])
	if height == math.MaxUint32 {
		ub = keyUpperBound(lb)
		return
	}
	ub = make([]byte, 1+SizeHeight)
	ub[0] = prefix
	be32(height+1, ub[1:])
	return
}

// keyUpperBound returns the exclusive upper bound covering every key that
// starts with prefix: the prefix with its last non-0xFF byte incremented,
// trailing 0xFF bytes dropped. Nil means unbounded.
func keyUpperBound(prefix []byte) []byte {
	ub := make([]byte, len(prefix))
	copy(ub, prefix)
	for i := len(ub) - 1; i >= 0; i-- {
		if ub[i] != 0xFF {
			ub[i]++
			return ub[:i+1]
		}
	}
	return nil
}
