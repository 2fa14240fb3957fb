package repo_interfaces

import (
	"context"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
)

// AccountRepository persists accounts with their ledgers. Lookups return
// commons.ErrRecordNotFound when nothing matches.
type AccountRepository interface {
	// Create inserts a new account with its ledger. An id or account number
	// already in use fails with commons.ErrDuplicateRecord.
	Create(ctx context.Context, account *domain.Account) error
	// Save inserts the account when it is unknown, otherwise updates its
	// currency and status. Transactions without an id are appended.
	Save(ctx context.Context, account *domain.Account) error
	FindByID(ctx context.Context, id int64) (domain.Account, error)
	FindByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error)
	FindAll(ctx context.Context) ([]domain.Account, error)
	SearchBy(ctx context.Context, query querybuilder.CompiledQuery) ([]domain.AccountResult, error)
}
