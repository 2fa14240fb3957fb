package scheduler

import (
	"context"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/shopspring/decimal"
)

type RateApplier interface {
	ApplyRate(ctx context.Context, rate decimal.Decimal) (domain.TaxRunSummary, error)
}

// TaxJob applies the operational banking tax to every account once per
// interval.
type TaxJob struct {
	accounts RateApplier
	rate     decimal.Decimal
	interval time.Duration
}

func NewTaxJob(accounts RateApplier, rate decimal.Decimal, interval time.Duration) *TaxJob {
	return &TaxJob{accounts: accounts, rate: rate, interval: interval}
}

// Run blocks until ctx is done, running the job on every tick. A failed run
// is logged and the next tick tries again.
func (j *TaxJob) Run(ctx context.Context) error {
	logger.Info("tax job started", logger.Fields{
		"rate":     j.rate.String(),
		"interval": j.interval.String(),
	})

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("tax job stopped", nil)
			return nil
		case <-ticker.C:
			_, _ = j.RunOnce(ctx)
		}
	}
}

func (j *TaxJob) RunOnce(ctx context.Context) (domain.TaxRunSummary, error) {
	summary, err := j.accounts.ApplyRate(ctx, j.rate)
	if err != nil {
		logger.Error("tax job run failed", err, logger.Fields{"rate": j.rate.String()})
		return summary, err
	}

	logger.Info("tax job run complete", logger.Fields{
		"rate":      summary.Rate.String(),
		"processed": summary.Processed,
		"failed":    summary.Failed,
	})
	return summary, nil
}
