package repo_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
)

type TransferRepository interface {
	Save(ctx context.Context, transfer *domain.Transfer) error
	FindByID(ctx context.Context, id int64) (domain.Transfer, error)
	// MarkExecuted moves a pending transfer to executed, keeping an existing
	// timestamp or stamping at. It returns commons.ErrTransferAlreadyExecuted
	// when the transfer is no longer pending.
	MarkExecuted(ctx context.Context, id int64, at time.Time) (domain.Transfer, error)
	SearchBy(ctx context.Context, query querybuilder.CompiledQuery) ([]domain.TransferResult, error)
}
