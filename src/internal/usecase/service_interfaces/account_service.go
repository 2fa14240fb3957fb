package service_interfaces

import (
	"context"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/shopspring/decimal"
)

type AccountService interface {
	Open(ctx context.Context, req domain.AccountOpening) (domain.Account, error)
	Close(ctx context.Context, accountNumber string) (domain.Account, error)
	Update(ctx context.Context, account domain.Account) (domain.Account, error)
	FindByID(ctx context.Context, id int64) (domain.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	SearchAccounts(ctx context.Context, query *querybuilder.SearchQuery) ([]domain.AccountResult, error)
	ApplyRate(ctx context.Context, rate decimal.Decimal) (domain.TaxRunSummary, error)
}
