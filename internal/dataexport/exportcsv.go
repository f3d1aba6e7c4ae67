package dataexport

import (
	"encoding/csv"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/logging"
)

func createCSV(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	logging.L.Info().Msgf("Writing to %s", path)
	return os.Create(path)
}

/* Blocks */

func ExportBlocks(s *chaindb.Store, path string) error {
	file, err := createCSV(path)
	if err != nil {
		logging.L.Err(err).Msg("failed creating file")
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"height",
		"headerHash",
		"prevHash",
		"timestamp",
	}); err != nil {
		return err
	}

	sc, err := s.ScanAllBlocks()
	if err != nil {
		logging.L.Err(err).Msg("error scanning blocks")
		return err
	}
	defer sc.Close()

	for sc.Next() {
		entry := sc.Entry()
		if err := writer.Write([]string{
			strconv.FormatUint(uint64(entry.Height), 10),
			hex.EncodeToString(entry.Record.Hash[:]),
			hex.EncodeToString(entry.Record.PrevHash[:]),
			strconv.FormatUint(entry.Record.Timestamp, 10),
		}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		logging.L.Err(err).Msg("error scanning blocks")
		return err
	}

	writer.Flush()
	return writer.Error()
}

/* Coins */

func ExportCoins(s *chaindb.Store, path string) error {
	file, err := createCSV(path)
	if err != nil {
		logging.L.Err(err).Msg("failed creating file")
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"coinId",
		"parentCoinId",
		"puzzleHash",
		"amount",
		"createdHeight",
	}); err != nil {
		return err
	}

	sc, err := s.ScanCoins()
	if err != nil {
		logging.L.Err(err).Msg("error scanning coins")
		return err
	}
	defer sc.Close()

	for sc.Next() {
		entry := sc.Entry()
		if err := writer.Write([]string{
			hex.EncodeToString(entry.CoinID[:]),
			hex.EncodeToString(entry.Record.ParentCoinID[:]),
			hex.EncodeToString(entry.Record.PuzzleHash[:]),
			strconv.FormatUint(entry.Record.Amount, 10),
			strconv.FormatUint(uint64(entry.Record.CreatedHeight), 10),
		}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		logging.L.Err(err).Msg("error scanning coins")
		return err
	}

	writer.Flush()
	return writer.Error()
}

/* Spends */

func ExportSpends(s *chaindb.Store, path string) error {
	file, err := createCSV(path)
	if err != nil {
		logging.L.Err(err).Msg("failed creating file")
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{
		"coinId",
		"spentHeight",
		"puzzleReveal",
		"solution",
	}); err != nil {
		return err
	}

	sc, err := s.ScanSpends()
	if err != nil {
		logging.L.Err(err).Msg("error scanning spends")
		return err
	}
	defer sc.Close()

	for sc.Next() {
		entry := sc.Entry()
		if err := writer.Write([]string{
			hex.EncodeToString(entry.CoinID[:]),
			strconv.FormatUint(uint64(entry.Record.SpentHeight), 10),
			hex.EncodeToString(entry.Record.PuzzleReveal),
			hex.EncodeToString(entry.Record.Solution),
		}); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		logging.L.Err(err).Msg("error scanning spends")
		return err
	}

	writer.Flush()
	return writer.Error()
}
