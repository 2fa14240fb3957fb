package cmd

import (
	"fmt"

	"github.com/api-sage/ledger-engine/src/internal/importer"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import Accounts.csv and Transfers.csv",
		Long: `Import accounts and then transfers from semicolon separated files.

Accounts.csv columns: accountId;balance;currency
Transfers.csv columns: source;destination;amount;description;timestamp
Timestamps use the yyyy/MM/dd HH:mm:ss layout. Bad rows are logged and skipped.

Example:
  ledger import --dir ./import`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if dir == "" {
				dir = cfg.ImportDir
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			summaries, err := importer.New(a.accounts, a.transfers, dir).Run(cmd.Context())
			for _, summary := range summaries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d imported, %d failed\n", summary.File, summary.Imported, summary.Failed)
			}
			return err
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "directory holding the csv files (default IMPORT_DIR)")
	return cmd
}
