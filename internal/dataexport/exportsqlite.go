package dataexport

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // driver

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/logging"
)

const archiveSchema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS blocks (
  height      INTEGER PRIMARY KEY,
  header_hash BLOB NOT NULL UNIQUE,
  prev_hash   BLOB NOT NULL,
  timestamp   INTEGER NOT NULL
) STRICT, WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS coins (
  coin_id        BLOB PRIMARY KEY,
  parent_coin_id BLOB NOT NULL,
  puzzle_hash    BLOB NOT NULL,
  amount         INTEGER NOT NULL,
  created_height INTEGER NOT NULL
) STRICT, WITHOUT ROWID;

CREATE TABLE IF NOT EXISTS coin_spends (
  coin_id       BLOB PRIMARY KEY REFERENCES coins(coin_id),
  spent_height  INTEGER NOT NULL,
  puzzle_reveal BLOB NOT NULL,
  solution      BLOB NOT NULL
) STRICT, WITHOUT ROWID;

CREATE INDEX IF NOT EXISTS ix_coins_parent  ON coins(parent_coin_id);
CREATE INDEX IF NOT EXISTS ix_coins_created ON coins(created_height);
CREATE INDEX IF NOT EXISTS ix_spends_height ON coin_spends(spent_height);
`

func openArchive(path string) (*sql.DB, error) {
	dsn := "file:" + path +
		"?_txlock=immediate" +
		"&_pragma=foreign_keys(ON)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=synchronous(OFF)" +
		"&_pragma=busy_timeout(5000)"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// SQLite wants a small pool; one connection avoids SQLITE_BUSY while the
	// archive is being filled.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, archiveSchema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type archiveBatcher struct {
	tx       *sql.Tx
	insBlock *sql.Stmt
	insCoin  *sql.Stmt
	insSpend *sql.Stmt
}

// beginArchiveBatch opens the transaction and prepares every insert once.
func beginArchiveBatch(ctx context.Context, db *sql.DB) (*archiveBatcher, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}

	// Defer FK checks to COMMIT; resets automatically at COMMIT/ROLLBACK.
	if _, err = tx.ExecContext(ctx, "PRAGMA defer_foreign_keys=ON"); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	insBlock, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO blocks(height,header_hash,prev_hash,timestamp) VALUES (?,?,?,?)")
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	insCoin, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO coins(coin_id,parent_coin_id,puzzle_hash,amount,created_height) VALUES (?,?,?,?,?)")
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	insSpend, err := tx.PrepareContext(ctx,
		"INSERT OR IGNORE INTO coin_spends(coin_id,spent_height,puzzle_reveal,solution) VALUES (?,?,?,?)")
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	return &archiveBatcher{tx, insBlock, insCoin, insSpend}, nil
}

func (b *archiveBatcher) closeStmts() {
	_ = b.insBlock.Close()
	_ = b.insCoin.Close()
	_ = b.insSpend.Close()
}

func (b *archiveBatcher) Commit() error {
	defer b.closeStmts()
	return b.tx.Commit()
}

func (b *archiveBatcher) Rollback() error {
	defer b.closeStmts()
	return b.tx.Rollback()
}

// ExportSQLite writes the whole store into a standalone SQLite archive at
// path, one transaction for the full export.
func ExportSQLite(ctx context.Context, s *chaindb.Store, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return err
	}
	logging.L.Info().Msgf("Writing archive to %s", path)

	db, err := openArchive(path)
	if err != nil {
		logging.L.Err(err).Msg("error opening archive")
		return err
	}
	defer db.Close()

	batch, err := beginArchiveBatch(ctx, db)
	if err != nil {
		logging.L.Err(err).Msg("error starting archive batch")
		return err
	}

	blocks, err := archiveBlocks(ctx, s, batch)
	if err != nil {
		logging.L.Err(err).Msg("error archiving blocks")
		_ = batch.Rollback()
		return err
	}
	coins, err := archiveCoins(ctx, s, batch)
	if err != nil {
		logging.L.Err(err).Msg("error archiving coins")
		_ = batch.Rollback()
		return err
	}
	spends, err := archiveSpends(ctx, s, batch)
	if err != nil {
		logging.L.Err(err).Msg("error archiving spends")
		_ = batch.Rollback()
		return err
	}

	if err := batch.Commit(); err != nil {
		logging.L.Err(err).Msg("error committing archive")
		return err
	}

	logging.L.Info().
		Int("blocks", blocks).
		Int("coins", coins).
		Int("spends", spends).
		Msg("archive export finished")
	return nil
}

func archiveBlocks(ctx context.Context, s *chaindb.Store, batch *archiveBatcher) (int, error) {
	sc, err := s.ScanAllBlocks()
	if err != nil {
		return 0, err
	}
	defer sc.Close()

	n := 0
	for sc.Next() {
		entry := sc.Entry()
		_, err := batch.insBlock.ExecContext(ctx,
			int64(entry.Height),
			entry.Record.Hash[:],
			entry.Record.PrevHash[:],
			int64(entry.Record.Timestamp),
		)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}

func archiveCoins(ctx context.Context, s *chaindb.Store, batch *archiveBatcher) (int, error) {
	sc, err := s.ScanCoins()
	if err != nil {
		return 0, err
	}
	defer sc.Close()

	n := 0
	for sc.Next() {
		entry := sc.Entry()
		_, err := batch.insCoin.ExecContext(ctx,
			entry.CoinID[:],
			entry.Record.ParentCoinID[:],
			entry.Record.PuzzleHash[:],
			int64(entry.Record.Amount),
			int64(entry.Record.CreatedHeight),
		)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}

func archiveSpends(ctx context.Context, s *chaindb.Store, batch *archiveBatcher) (int, error) {
	sc, err := s.ScanSpends()
	if err != nil {
		return 0, err
	}
	defer sc.Close()

	n := 0
	for sc.Next() {
		entry := sc.Entry()
		_, err := batch.insSpend.ExecContext(ctx,
			entry.CoinID[:],
			int64(entry.Record.SpentHeight),
			[]byte(entry.Record.PuzzleReveal),
			[]byte(entry.Record.Solution),
		)
		if err != nil {
			return n, err
		}
		n++
	}
	return n, sc.Err()
}
