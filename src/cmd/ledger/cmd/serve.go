package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-engine/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-engine/src/internal/adapter/http/router"
	"github.com/api-sage/ledger-engine/src/internal/importer"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/scheduler"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var withTaxJob bool
	var importOnStart bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the account, transfer and rate endpoints behind basic auth.

SQL stores are migrated before the listener starts. The operational banking
tax job runs every TAX_JOB_INTERVAL unless --tax-job=false.

Example:
  ledger serve
  ledger serve --import --tax-job=false`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer a.Close()

			if importOnStart {
				if _, err := importer.New(a.accounts, a.transfers, cfg.ImportDir).Run(ctx); err != nil {
					logger.Error("startup import failed", err, logger.Fields{"dir": cfg.ImportDir})
				}
			}

			if withTaxJob {
				go func() {
					_ = scheduler.NewTaxJob(a.accounts, cfg.TaxRate, cfg.TaxJobInterval).Run(ctx)
				}()
			}

			handler := router.New(
				middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKeyHash),
				controller.NewAccountController(a.accounts),
				controller.NewTransferController(a.transfers, a.accounts),
				controller.NewRateController(a.rates),
			)
			server := &http.Server{
				Addr:              cfg.HTTPAddr,
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("http server listening", logger.Fields{"addr": cfg.HTTPAddr})
				errCh <- server.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			logger.Info("http server shutting down", nil)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&withTaxJob, "tax-job", true, "run the operational banking tax job")
	cmd.Flags().BoolVar(&importOnStart, "import", false, "import IMPORT_DIR before serving")
	return cmd
}
