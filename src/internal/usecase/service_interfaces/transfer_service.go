package service_interfaces

import (
	"context"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/shopspring/decimal"
)

type TransferService interface {
	CreateTransfer(ctx context.Context, sourceID int64, destinationID int64, amount decimal.Decimal, description string, timestamp *time.Time) (domain.Transfer, error)
	ExecuteTransfer(ctx context.Context, id int64) (domain.Transfer, error)
	FindTransfer(ctx context.Context, id int64) (domain.Transfer, error)
	SearchTransfers(ctx context.Context, query *querybuilder.SearchQuery) ([]domain.TransferResult, error)
}
