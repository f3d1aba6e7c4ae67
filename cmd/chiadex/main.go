package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path"

	"github.com/spf13/cobra"

	"github.com/chiadex/chiadex/internal/chaindb"
	"github.com/chiadex/chiadex/internal/config"
	"github.com/chiadex/chiadex/internal/dataexport"
	"github.com/chiadex/chiadex/internal/ingest"
	"github.com/chiadex/chiadex/internal/kvdb"
	"github.com/chiadex/chiadex/internal/logging"
	"github.com/chiadex/chiadex/internal/server"
)

var (
	Version = "0.1.0" // todo: LD flags etc. to setup correctly and add git hash

	// Global flags
	datadir    string
	configFile string

	// Export command flags
	csvOut    string
	sqliteOut string

	// Count command flags
	countKeyspace string
	startHeight   uint32
	endHeight     uint32
)

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(
		&datadir,
		"datadir",
		config.DefaultBaseDirectory,
		"Set the base directory for chiadex. Default directory is ~/.chiadex",
	)
	rootCmd.PersistentFlags().StringVar(
		&configFile,
		"config",
		"",
		"Path to config file (default: datadir/chiadex.toml)",
	)

	// Export command flags
	exportCsvCmd.Flags().StringVar(
		&csvOut,
		"out",
		"",
		"Output directory for the CSV files (default: datadir/data-export)",
	)
	exportSqliteCmd.Flags().StringVar(
		&sqliteOut,
		"out",
		"",
		"Output path for the SQLite archive (default: datadir/data-export/chiadex.sqlite)",
	)

	// Count command flags
	dbCountCmd.Flags().StringVar(
		&countKeyspace,
		"keyspace",
		"blocks",
		"Keyspace to count: peak, blocks, block-hashes, coins, spends, created, spent, children",
	)
	dbCountCmd.Flags().Uint32Var(
		&startHeight,
		"start-height",
		0,
		"Start height of the count window (height-keyed keyspaces only)",
	)
	dbCountCmd.Flags().Uint32Var(
		&endHeight,
		"end-height",
		0,
		"End height (exclusive) of the count window (height-keyed keyspaces only)",
	)
}

var rootCmd = &cobra.Command{
	Use:   "chiadex",
	Short: "Chia coin-set ledger indexer",
	Long: `Chiadex ingests recorded block bundles into a local key-value store and
serves block and coin lookups over HTTP.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.BaseDirectory = datadir
		config.SetDirectories()

		err := os.Mkdir(config.BaseDirectory, 0750)
		if err != nil && !errors.Is(err, os.ErrExist) {
			logging.L.Fatal().Err(err).Msg("error creating base directory")
		}

		logging.L.Info().Msgf("base directory %s", config.BaseDirectory)

		// load after loggers are instantiated
		if configFile == "" {
			configFile = path.Join(config.BaseDirectory, config.ConfigFileName)
		}
		config.LoadConfigs(configFile)

		if config.LogsPath != "" {
			if err := logging.SetLogOutput(config.LogsPath, "chiadex.log"); err != nil {
				logging.L.Warn().Err(err).Msg("Failed to initialize file logging")
			}
		}
		if !config.LogToConsole {
			logging.DisableConsole()
		}
	},
}

// openStore opens the key-value store under the configured data directory.
// The caller owns the returned store and must Close it.
func openStore() (*chaindb.Store, error) {
	err := os.Mkdir(config.DBPath, 0750)
	if err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("error creating db path: %w", err)
	}

	db, err := kvdb.Open(config.DBEngine, config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed opening db: %w", err)
	}
	return chaindb.New(db), nil
}

func closeStore(store *chaindb.Store) {
	if err := store.Close(); err != nil {
		logging.L.Err(err).Msg("db close failed")
		return
	}
	logging.L.Debug().Msg("db closed successfully")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the query API",
	Long:  `Serve block and coin lookups over HTTP against the local store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		defer logging.L.Info().Msg("Program shut down")

		store, err := openStore()
		if err != nil {
			logging.L.Err(err).Msg("could not open store")
			return err
		}
		defer closeStore(store)

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		logging.L.Info().Msg("Program Started")

		errChan := make(chan error)
		go func() {
			// RunServer only returns once the listener is gone.
			server.RunServer(server.NewApiHandler(store))
			errChan <- errors.New("server stopped")
		}()

		select {
		case <-interrupt:
			logging.L.Info().Msg("Program interrupted")
			return nil
		case err := <-errChan:
			logging.L.Err(err).Msg("program failed")
			return err
		}
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <bundles.jsonl>",
	Short: "Replay a block bundle stream into the store",
	Long: `Replay a JSONL stream of block bundles into the local store. Bundles at or
below the stored peak are skipped, so an interrupted run can be repeated
with the same file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			logging.L.Err(err).Msg("could not open store")
			return err
		}
		defer closeStore(store)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		go func() {
			<-interrupt
			logging.L.Info().Msg("Program interrupted")
			cancel()
		}()

		stats, err := ingest.NewReplayer(store).ReplayFile(ctx, args[0])
		if stats != nil {
			fmt.Printf("Applied %d blocks (skipped %d), peak height %d\n",
				stats.Applied, stats.Skipped, stats.PeakHeight)
		}
		if errors.Is(err, context.Canceled) {
			// partial ingests are resumable, an interrupt is not a failure
			return nil
		}
		return err
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the store contents",
}

var exportCsvCmd = &cobra.Command{
	Use:   "csv",
	Short: "Export blocks, coins and spends to CSV files",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			logging.L.Err(err).Msg("could not open store")
			return err
		}
		defer closeStore(store)

		out := csvOut
		if out == "" {
			out = path.Join(config.BaseDirectory, "data-export")
		}
		return dataexport.ExportAllCSV(store, out)
	},
}

var exportSqliteCmd = &cobra.Command{
	Use:   "sqlite",
	Short: "Export the store into a SQLite archive",
	Long: `Export blocks, coins and spends into a single SQLite database file.
The archive carries the same indexes the store answers queries from, so it
can be inspected with any SQLite tooling.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			logging.L.Err(err).Msg("could not open store")
			return err
		}
		defer closeStore(store)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)
		go func() {
			<-interrupt
			logging.L.Info().Msg("Program interrupted")
			cancel()
		}()

		out := sqliteOut
		if out == "" {
			out = path.Join(config.BaseDirectory, "data-export", "chiadex.sqlite")
		}
		return dataexport.ExportSQLite(ctx, store, out)
	},
}

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Inspect the raw key-value store",
}

var dbInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show store information",
	Long:  `Show the stored peak, the block height range and key counts per keyspace.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Opening database at: %s\n", config.DBPath)

		explorer, err := NewDatabaseExplorer(config.DBEngine, config.DBPath)
		if err != nil {
			return fmt.Errorf("error opening database: %w", err)
		}
		defer explorer.Close()

		if err := explorer.PrintDatabaseInfo(); err != nil {
			return fmt.Errorf("error printing database info: %w", err)
		}
		return nil
	},
}

var dbCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Count keys in one keyspace",
	Long: `Count keys of one keyspace. The height-keyed keyspaces (blocks, created,
spent) accept an optional window via start-height and end-height, where the
end height is exclusive. Other keyspaces ignore the height flags.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, ok := keyspaceByName(countKeyspace)
		if !ok {
			return fmt.Errorf("unknown keyspace: %s", countKeyspace)
		}
		windowed := ks.heightKeyed && endHeight > 0
		if windowed && startHeight > endHeight {
			return fmt.Errorf("start-height must be less than or equal to end-height")
		}

		fmt.Printf("Opening database at: %s\n", config.DBPath)
		fmt.Printf("Counting %s keys", countKeyspace)
		if windowed {
			fmt.Printf(" from height %d to %d\n", startHeight, endHeight)
		} else {
			fmt.Println()
		}

		explorer, err := NewDatabaseExplorer(config.DBEngine, config.DBPath)
		if err != nil {
			return fmt.Errorf("error opening database: %w", err)
		}
		defer explorer.Close()

		count, err := explorer.CountKeyspace(countKeyspace, startHeight, endHeight)
		if err != nil {
			return fmt.Errorf("error counting keys: %w", err)
		}

		fmt.Printf("Found %d %s keys", count, countKeyspace)
		if windowed {
			fmt.Printf(" in height range %d-%d", startHeight, endHeight)
		}
		fmt.Println()
		return nil
	},
}

func main() {
	// Add subcommands
	exportCmd.AddCommand(exportCsvCmd)
	exportCmd.AddCommand(exportSqliteCmd)
	dbCmd.AddCommand(dbInfoCmd)
	dbCmd.AddCommand(dbCountCmd)

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dbCmd)

	// Execute the root command
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
