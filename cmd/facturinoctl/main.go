// facturinoctl is the operations CLI: schema migrations and offline ledger
// verification.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/facturino/ledger-api/pkg/config"
	"github.com/facturino/ledger-api/pkg/logger"
)

var (
	cfg *config.Config
	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "facturinoctl",
	Short: "Operations CLI for the Facturino ledger API",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		log = logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
		return nil
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(verifyLedgerCmd)
}
