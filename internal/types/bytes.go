// Package types holds the ledger data model shared by the store, the
// ingestion path and the HTTP layer.
package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Bytes32 is a fixed 32-byte digest: block hashes, coin ids, puzzle hashes.
// Rendered as 0x-prefixed hex; parsers accept the prefix as optional.
type Bytes32 [32]byte

var ErrBadDigest = errors.New("digest must be 32 bytes of hex")

func Bytes32FromHex(s string) (Bytes32, error) {
	var b Bytes32
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return b, fmt.Errorf("%w: %v", ErrBadDigest, err)
	}
	if len(raw) != len(b) {
		return b, fmt.Errorf("%w: got %d bytes", ErrBadDigest, len(raw))
	}
	copy(b[:], raw)
	return b, nil
}

// Bytes32FromSlice copies raw into a Bytes32. The slice must be exactly
// 32 bytes.
func Bytes32FromSlice(raw []byte) (Bytes32, error) {
	var b Bytes32
	if len(raw) != len(b) {
		return b, fmt.Errorf("%w: got %d bytes", ErrBadDigest, len(raw))
	}
	copy(b[:], raw)
	return b, nil
}

func (b Bytes32) String() string {
	return "0x" + hex.EncodeToString(b[:])
}

func (b Bytes32) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *Bytes32) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	v, err := Bytes32FromHex(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Bytes is an opaque variable-length payload (puzzle reveals, solutions),
// rendered as 0x-prefixed hex.
type Bytes []byte

func (b Bytes) String() string {
	return "0x" + hex.EncodeToString(b)
}

func (b Bytes) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.String() + `"`), nil
}

func (b *Bytes) UnmarshalJSON(data []byte) error {
	s, err := unquote(data)
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil {
		return fmt.Errorf("bad hex payload: %w", err)
	}
	*b = raw
	return nil
}

func unquote(data []byte) (string, error) {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return "", errors.New("expected a JSON string")
	}
	return string(data[1 : len(data)-1]), nil
}
