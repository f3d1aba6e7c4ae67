package dataexport

import (
	"fmt"
	"time"

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/logging"
)

// ExportAllCSV writes one timestamped CSV per keyspace into dir.
func ExportAllCSV(s *chaindb.Store, dir string) error {
	logging.L.Info().Msg("Exporting data")
	timestamp := time.Now().Unix()

	logging.L.Info().Msg("Exporting blocks")
	err := ExportBlocks(s, fmt.Sprintf("%s/blocks-%d.csv", dir, timestamp))
	if err != nil {
		logging.L.Err(err).Msg("error exporting blocks")
		return err
	}
	logging.L.Info().Msg("Finished blocks")

	logging.L.Info().Msg("Exporting coins")
	err = ExportCoins(s, fmt.Sprintf("%s/coins-%d.csv", dir, timestamp))
	if err != nil {
		logging.L.Err(err).Msg("error exporting coins")
		return err
	}
	logging.L.Info().Msg("Finished coins")

	logging.L.Info().Msg("Exporting spends")
	err = ExportSpends(s, fmt.Sprintf("%s/spends-%d.csv", dir, timestamp))
	if err != nil {
		logging.L.Err(err).Msg("error exporting spends")
		return err
	}
	logging.L.Info().Msg("Finished spends")

	logging.L.Info().Msg("Export done")
	return nil
}
