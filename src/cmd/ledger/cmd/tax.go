package cmd

import (
	"fmt"

	"github.com/api-sage/ledger-engine/src/internal/scheduler"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newTaxCmd() *cobra.Command {
	var rate string

	cmd := &cobra.Command{
		Use:   "tax",
		Short: "Apply the operational banking tax once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if rate != "" {
				cfg.TaxRate, err = decimal.NewFromString(rate)
				if err != nil {
					return fmt.Errorf("parse --rate: %w", err)
				}
			}

			a, err := newApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			summary, err := scheduler.NewTaxJob(a.accounts, cfg.TaxRate, cfg.TaxJobInterval).RunOnce(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rate %s: %d accounts processed, %d failed\n", summary.Rate, summary.Processed, summary.Failed)
			return nil
		},
	}

	cmd.Flags().StringVar(&rate, "rate", "", "tax rate applied to every balance (default TAX_RATE)")
	return cmd
}
