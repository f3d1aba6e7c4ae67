package chaindb

import (
	"fmt"

	"github.com/chiadex/chiadex/internal/types"
)

// SequenceError rejects a block whose height is not the next in the chain.
// Nothing was written.
type SequenceError struct {
	Height uint32 // offered
	Want   uint32 // required
}

func (e *SequenceError) Error() string {
	return fmt.Sprintf("out-of-sequence block: got height %d, want %d", e.Height, e.Want)
}

// ConflictError rejects a block whose contents collide with committed state
// or with itself: a duplicate block hash, a recreated coin id, a spend of an
// unknown coin, or a second spend of the same coin. Nothing was written.
type ConflictError struct {
	Digest types.Bytes32 // offending coin id or block hash
	Reason string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict: %s: %s", e.Reason, e.Digest)
}

// StorageError wraps a fault of the underlying engine: I/O failure or a
// record that no longer parses. Fatal; the store never retries.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage fault during %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
