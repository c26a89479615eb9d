// Command fleetctl manages a ship fleet registry from the command line and
// serves its HTTP API.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"fleetcore/internal/core"
)

var (
	flagDriver     string
	flagSQLitePath string
	flagPostgres   string
)

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "Manage the ship fleet registry",
	Long: `fleetctl keeps an ordered registry of ship records with validated
capacity, speed and fuel consumption figures, backed by sqlite, postgres or
process memory. It imports and exports the registry as delimited text and can
serve the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "fleetctl: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "", "storage driver: memory|sqlite|postgres (default from FLEETCORE_STORAGE_DRIVER or sqlite)")
	rootCmd.PersistentFlags().StringVar(&flagSQLitePath, "db", "", "sqlite database path (driver=sqlite)")
	rootCmd.PersistentFlags().StringVar(&flagPostgres, "dsn", "", "postgres DSN (driver=postgres)")
}

// openService builds a fresh service for this invocation. Flags override the
// storage environment variables before the store factory reads them.
func openService() (*core.Service, func(), error) {
	if flagDriver != "" {
		os.Setenv("FLEETCORE_STORAGE_DRIVER", flagDriver)
	}
	if flagSQLitePath != "" {
		os.Setenv("FLEETCORE_SQLITE_PATH", flagSQLitePath)
	}
	if flagPostgres != "" {
		os.Setenv("FLEETCORE_POSTGRES_DSN", flagPostgres)
	}
	store, err := core.OpenPersistentStore(core.DefaultRulesEngine())
	if err != nil {
		return nil, nil, err
	}
	closer := func() {
		if c, ok := store.(io.Closer); ok {
			_ = c.Close()
		}
	}
	return core.NewService(store), closer, nil
}

func main() {
	Execute()
}
