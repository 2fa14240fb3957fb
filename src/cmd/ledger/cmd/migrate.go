package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/sqlstore"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/spf13/cobra"
)

const migrateTimeout = 30 * time.Second

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the embedded schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.StoreDriver == "memory" {
				return errNoSchema
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), migrateTimeout)
			defer cancel()

			dialect, db, err := openDB(ctx, cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := sqlstore.RunMigrations(ctx, db, dialect); err != nil {
				return err
			}

			logger.Info("migrations completed", logger.Fields{"dialect": dialect.Name})
			fmt.Fprintf(cmd.OutOrStdout(), "%s migrations completed successfully\n", dialect.Name)
			return nil
		},
	}
}
