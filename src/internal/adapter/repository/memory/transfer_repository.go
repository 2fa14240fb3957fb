package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
)

var _ repo_interfaces.TransferRepository = (*TransferRepository)(nil)

type TransferRepository struct {
	data *dataset
}

func (r *TransferRepository) Save(_ context.Context, transfer *domain.Transfer) error {
	d := r.data
	d.mu.Lock()
	defer d.mu.Unlock()

	if transfer.ID == 0 {
		if _, taken := d.references[transfer.Reference]; taken {
			return fmt.Errorf("save transfer %s: %w", transfer.Reference, commons.ErrDuplicateRecord)
		}
		d.nextTransfer++
		transfer.ID = d.nextTransfer
		d.references[transfer.Reference] = transfer.ID
	} else if _, ok := d.transfers[transfer.ID]; !ok {
		return commons.ErrRecordNotFound
	}

	d.transfers[transfer.ID] = copyTransfer(*transfer)
	return nil
}

func (r *TransferRepository) FindByID(_ context.Context, id int64) (domain.Transfer, error) {
	d := r.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	transfer, ok := d.transfers[id]
	if !ok {
		return domain.Transfer{}, commons.ErrRecordNotFound
	}
	return copyTransfer(transfer), nil
}

func (r *TransferRepository) MarkExecuted(_ context.Context, id int64, at time.Time) (domain.Transfer, error) {
	d := r.data
	d.mu.Lock()
	defer d.mu.Unlock()

	transfer, ok := d.transfers[id]
	if !ok {
		return domain.Transfer{}, commons.ErrRecordNotFound
	}
	if transfer.Status != domain.TransferStatusPending {
		return domain.Transfer{}, commons.ErrTransferAlreadyExecuted
	}

	transfer.Status = domain.TransferStatusExecuted
	if transfer.Timestamp == nil {
		stamped := at
		transfer.Timestamp = &stamped
	}
	d.transfers[id] = transfer
	return copyTransfer(transfer), nil
}

func (r *TransferRepository) SearchBy(_ context.Context, query querybuilder.CompiledQuery) ([]domain.TransferResult, error) {
	if query.Shape != querybuilder.TransferRows {
		return nil, fmt.Errorf("transfer search received result shape %d", query.Shape)
	}

	d := r.data
	d.mu.RLock()
	ids := make([]int64, 0, len(d.transfers))
	for id := range d.transfers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]domain.TransferResult, 0, len(ids))
	for _, id := range ids {
		transfer := copyTransfer(d.transfers[id])
		rows = append(rows, domain.TransferResult{
			TransferID:               transfer.ID,
			ExecutedAt:               transfer.Timestamp,
			SourceAccountNumber:      d.accounts[transfer.SourceAccountID].AccountNumber,
			DestinationAccountNumber: d.accounts[transfer.DestinationAccountID].AccountNumber,
			Amount:                   transfer.Amount,
		})
	}
	d.mu.RUnlock()

	return filterAndSort(rows, query, transferValue), nil
}

func copyTransfer(transfer domain.Transfer) domain.Transfer {
	if transfer.Timestamp != nil {
		stamped := *transfer.Timestamp
		transfer.Timestamp = &stamped
	}
	return transfer
}

func transferValue(row domain.TransferResult, field string) any {
	switch field {
	case querybuilder.FieldSource:
		return row.SourceAccountNumber
	case querybuilder.FieldDestination:
		return row.DestinationAccountNumber
	case querybuilder.FieldTimestamp:
		return row.ExecutedAt
	default:
		return nil
	}
}
