// Package cmd provides the ledger CLI commands.
package cmd

import (
	"github.com/api-sage/ledger-engine/src/internal/config"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/spf13/cobra"
)

// NewRootCmd builds the command tree. Every subcommand loads its settings
// through config.Load, so the environment and .env file drive all of them.
func NewRootCmd() *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "ledger",
		Short: "Multi-currency bank ledger with a transfer engine",
		Long: `ledger keeps bank accounts as append-only transaction ledgers and moves
money between them through two-phase transfers with currency conversion.

Example:
  ledger migrate
  ledger serve
  ledger import --dir ./import
  ledger tax --rate -0.001`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
			logger.SetDebug(debug)
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newTaxCmd())
	return root
}

func Execute() error {
	return NewRootCmd().Execute()
}

func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if cfg.Debug {
		logger.SetDebug(true)
	}
	logger.Debug("configuration loaded", logger.Fields{
		"command":     cmd.Name(),
		"storeDriver": cfg.StoreDriver,
		"httpAddr":    cfg.HTTPAddr,
	})
	return cfg, nil
}
