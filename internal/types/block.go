package types

// BlockRecord is the stored header data for one block. The height is not
// part of the record; it is the key the record is stored under.
type BlockRecord struct {
	Hash      Bytes32 `json:"header_hash"`
	PrevHash  Bytes32 `json:"prev_hash"`
	Timestamp uint64  `json:"timestamp"`
}

// Block is one ledger update: a block header plus the coin events it
// carries. This is the unit handed to the indexing engine.
type Block struct {
	Height    uint32  `json:"height"`
	Hash      Bytes32 `json:"header_hash"`
	PrevHash  Bytes32 `json:"prev_hash"`
	Timestamp uint64  `json:"timestamp"`
	Created   []Coin  `json:"created_coins"`
	Spent     []Spend `json:"spent_coins"`
}

func (b *Block) Record() *BlockRecord {
	return &BlockRecord{
		Hash:      b.Hash,
		PrevHash:  b.PrevHash,
		Timestamp: b.Timestamp,
	}
}
