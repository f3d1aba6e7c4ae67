package main

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/kvdb"
)

// keyspace names one prefix of the store layout. Height-keyed keyspaces
// order their keys by big-endian height right after the prefix byte, which
// makes windowed counts a plain range scan.
type keyspace struct {
	name        string
	prefix      byte
	heightKeyed bool
}

var keyspaces = []keyspace{
	{"peak", chaindb.KPeak, false},
	{"blocks", chaindb.KBlock, true},
	{"block-hashes", chaindb.KBlockHash, false},
	{"coins", chaindb.KCoin, false},
	{"spends", chaindb.KCoinSpend, false},
	{"created", chaindb.KCreatedHeight, true},
	{"spent", chaindb.KSpentHeight, true},
	{"children", chaindb.KChildren, false},
}

func keyspaceByName(name string) (keyspace, bool) {
	for _, ks := range keyspaces {
		if ks.name == name {
			return ks, true
		}
	}
	return keyspace{}, false
}

// DatabaseExplorer walks the raw keyspaces of one store directory. It opens
// the engine directly, so it must not run while a serve or ingest process
// holds the same directory.
type DatabaseExplorer struct {
	db kvdb.KV
}

func NewDatabaseExplorer(engine, path string) (*DatabaseExplorer, error) {
	db, err := kvdb.Open(engine, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &DatabaseExplorer{db: db}, nil
}

func (de *DatabaseExplorer) Close() error {
	return de.db.Close()
}

// CountRange counts the keys in [lb, ub).
func (de *DatabaseExplorer) CountRange(lb, ub []byte) (int, error) {
	iter, err := de.db.NewIterator(lb, ub)
	if err != nil {
		return 0, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	count := 0
	for ok := iter.First(); ok; ok = iter.Next() {
		count++
	}
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("iterator error: %w", err)
	}
	return count, nil
}

// CountKeyspace counts the keys of one named keyspace. For height-keyed
// keyspaces a non-zero endHeight narrows the count to [startHeight, endHeight).
func (de *DatabaseExplorer) CountKeyspace(name string, startHeight, endHeight uint32) (int, error) {
	ks, ok := keyspaceByName(name)
	if !ok {
		return 0, fmt.Errorf("unknown keyspace: %s", name)
	}

	lb := []byte{ks.prefix}
	ub := []byte{ks.prefix + 1}
	if ks.heightKeyed && endHeight > 0 {
		lb = heightKey(ks.prefix, startHeight)
		ub = heightKey(ks.prefix, endHeight)
	}
	return de.CountRange(lb, ub)
}

func heightKey(prefix byte, height uint32) []byte {
	k := make([]byte, 1+chaindb.SizeHeight)
	k[0] = prefix
	binary.BigEndian.PutUint32(k[1:], height)
	return k
}

// ListAllKeyspaces tallies every key in the store by its prefix byte.
func (de *DatabaseExplorer) ListAllKeyspaces() (map[byte]int, error) {
	iter, err := de.db.NewIterator(nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	counts := make(map[byte]int)
	for ok := iter.First(); ok; ok = iter.Next() {
		key := iter.Key()
		if len(key) == 0 {
			continue
		}
		counts[key[0]]++
	}
	if err := iter.Error(); err != nil {
		return nil, fmt.Errorf("iterator error: %w", err)
	}
	return counts, nil
}

// BlockHeightRange reports the lowest and highest stored block heights.
// ok is false on an empty block keyspace.
func (de *DatabaseExplorer) BlockHeightRange() (min, max uint32, ok bool, err error) {
	lb, ub := chaindb.BoundsBlockAll()
	iter, err := de.db.NewIterator(lb, ub)
	if err != nil {
		return 0, 0, false, fmt.Errorf("failed to create iterator: %w", err)
	}
	defer iter.Close()

	if !iter.First() {
		return 0, 0, false, iter.Error()
	}
	min = binary.BigEndian.Uint32(iter.Key()[1:])
	max = min
	if iter.Last() {
		max = binary.BigEndian.Uint32(iter.Key()[1:])
	}
	return min, max, true, iter.Error()
}

// PrintKeyspaceSummary prints the key count of every keyspace, known ones
// first, then any prefixes the layout does not name.
func (de *DatabaseExplorer) PrintKeyspaceSummary() error {
	counts, err := de.ListAllKeyspaces()
	if err != nil {
		return err
	}

	fmt.Println("Keyspace Summary:")
	fmt.Println("=================")

	total := 0
	for _, ks := range keyspaces {
		count := counts[ks.prefix]
		fmt.Printf("%-15s: %8d keys\n", ks.name, count)
		total += count
		delete(counts, ks.prefix)
	}

	var unknown []int
	for prefix := range counts {
		unknown = append(unknown, int(prefix))
	}
	sort.Ints(unknown)
	for _, prefix := range unknown {
		fmt.Printf("%-15s: %8d keys\n", fmt.Sprintf("unknown(0x%02x)", prefix), counts[byte(prefix)])
		total += counts[byte(prefix)]
	}

	fmt.Printf("%-15s: %8d keys\n", "TOTAL", total)
	return nil
}

// PrintDatabaseInfo prints the stored peak, the block height range and the
// keyspace summary.
func (de *DatabaseExplorer) PrintDatabaseInfo() error {
	fmt.Println("Chiadex Database Information")
	fmt.Println("============================")

	val, err := de.db.Get(chaindb.KeyPeak())
	switch {
	case errors.Is(err, kvdb.ErrNotFound):
		fmt.Println("Peak height: none (empty store)")
	case err != nil:
		return fmt.Errorf("error reading peak: %w", err)
	default:
		peak, err := chaindb.ParseHeightValue(val)
		if err != nil {
			return fmt.Errorf("error parsing peak: %w", err)
		}
		fmt.Printf("Peak height: %d\n", peak)
	}

	min, max, ok, err := de.BlockHeightRange()
	if err != nil {
		return fmt.Errorf("error reading block range: %w", err)
	}
	if ok {
		fmt.Printf("Block range: %d - %d\n", min, max)
	}

	fmt.Println()
	return de.PrintKeyspaceSummary()
}
