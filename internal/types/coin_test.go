package types

import (
	"bytes"
	"testing"
)

func TestAmountBytes(t *testing.T) {
	cases := []struct {
		amount uint64
		want   []byte
	}{
		{0, nil},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x00, 0x80}},
		{255, []byte{0x00, 0xff}},
		{256, []byte{0x01, 0x00}},
		{0x7fff, []byte{0x7f, 0xff}},
		{0x8000, []byte{0x00, 0x80, 0x00}},
		{1000000000000, []byte{0x00, 0xe8, 0xd4, 0xa5, 0x10, 0x00}},
		{1 << 63, []byte{0x00, 0x80, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}},
		{^uint64(0), []byte{0x00, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}},
	}
	for _, c := range cases {
		got := amountBytes(c.amount)
		if !bytes.Equal(got, c.want) {
			t.Errorf("amountBytes(%d) = %x, want %x", c.amount, got, c.want)
		}
	}
}

func TestCoinIDDeterministic(t *testing.T) {
	var parent, puzzle Bytes32
	parent[0] = 0x01
	puzzle[0] = 0x02

	a := CoinID(parent, puzzle, 1000)
	b := CoinID(parent, puzzle, 1000)
	if a != b {
		t.Fatal("same inputs produced different ids")
	}

	if CoinID(parent, puzzle, 1001) == a {
		t.Error("amount change did not alter id")
	}
	if CoinID(puzzle, parent, 1000) == a {
		t.Error("swapped parent and puzzle did not alter id")
	}
	var zero Bytes32
	if CoinID(zero, zero, 0) == a {
		t.Error("distinct inputs collided")
	}
}

func TestBlockRecord(t *testing.T) {
	b := Block{
		Height:    7,
		Hash:      Bytes32{0x0a},
		PrevHash:  Bytes32{0x0b},
		Timestamp: 1700000000,
		Created:   []Coin{{Amount: 1}},
		Spent:     []Spend{{}},
	}
	rec := b.Record()
	if rec.Hash != b.Hash || rec.PrevHash != b.PrevHash || rec.Timestamp != b.Timestamp {
		t.Errorf("record mismatch: %+v", rec)
	}
}
