package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/logger"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
	"github.com/jmoiron/sqlx"
)

var _ repo_interfaces.TransferRepository = (*TransferRepository)(nil)

type TransferRepository struct {
	ext     sqlx.ExtContext
	dialect Dialect
}

func (r *TransferRepository) Save(ctx context.Context, transfer *domain.Transfer) error {
	if transfer.ID != 0 {
		const query = `
UPDATE transfers
SET amount = ?,
    description = ?,
    status = ?,
    transferred_at = ?
WHERE id = ?`

		_, err := execRequiredRows(ctx, r.ext, query,
			transfer.Amount,
			transfer.Description,
			string(transfer.Status),
			nullTime(transfer.Timestamp),
			transfer.ID,
		)
		if errors.Is(err, errNoRowsAffected) {
			return commons.ErrRecordNotFound
		}
		if err != nil {
			return fmt.Errorf("update transfer: %w", err)
		}
		return nil
	}

	logger.Info("transfer repository create", logger.Fields{
		"reference":            transfer.Reference,
		"sourceAccountId":      transfer.SourceAccountID,
		"destinationAccountId": transfer.DestinationAccountID,
	})

	const query = `
INSERT INTO transfers (
	reference,
	source_account_id,
	destination_account_id,
	amount,
	description,
	status,
	transferred_at,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
RETURNING id`

	if err := r.ext.QueryRowxContext(ctx, r.ext.Rebind(query),
		transfer.Reference,
		transfer.SourceAccountID,
		transfer.DestinationAccountID,
		transfer.Amount,
		transfer.Description,
		string(transfer.Status),
		nullTime(transfer.Timestamp),
		transfer.CreatedAt,
	).Scan(&transfer.ID); err != nil {
		logger.Error("transfer repository create failed", err, logger.Fields{
			"reference": transfer.Reference,
		})
		if r.dialect.isUniqueViolation(err) {
			return fmt.Errorf("create transfer %s: %w", transfer.Reference, commons.ErrDuplicateRecord)
		}
		return fmt.Errorf("create transfer: %w", err)
	}

	return nil
}

func (r *TransferRepository) FindByID(ctx context.Context, id int64) (domain.Transfer, error) {
	const query = `
SELECT id, reference, source_account_id, destination_account_id, amount, description, status, transferred_at, created_at
FROM transfers
WHERE id = ?`

	var (
		transfer      domain.Transfer
		status        string
		transferredAt sql.NullTime
	)
	if err := r.ext.QueryRowxContext(ctx, r.ext.Rebind(query), id).Scan(
		&transfer.ID,
		&transfer.Reference,
		&transfer.SourceAccountID,
		&transfer.DestinationAccountID,
		&transfer.Amount,
		&transfer.Description,
		&status,
		&transferredAt,
		&transfer.CreatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Transfer{}, commons.ErrRecordNotFound
		}
		return domain.Transfer{}, fmt.Errorf("get transfer: %w", err)
	}

	transfer.Status = domain.TransferStatus(status)
	if transferredAt.Valid {
		value := transferredAt.Time
		transfer.Timestamp = &value
	}
	return transfer, nil
}

// MarkExecuted only matches pending rows, so concurrent executors of the
// same transfer serialise on its row lock and all but one see no rows.
func (r *TransferRepository) MarkExecuted(ctx context.Context, id int64, at time.Time) (domain.Transfer, error) {
	const query = `
UPDATE transfers
SET status = ?,
    transferred_at = COALESCE(transferred_at, ?)
WHERE id = ? AND status = ?`

	_, err := execRequiredRows(ctx, r.ext, query,
		string(domain.TransferStatusExecuted),
		at,
		id,
		string(domain.TransferStatusPending),
	)
	if errors.Is(err, errNoRowsAffected) {
		if _, findErr := r.FindByID(ctx, id); findErr != nil {
			return domain.Transfer{}, findErr
		}
		return domain.Transfer{}, commons.ErrTransferAlreadyExecuted
	}
	if err != nil {
		return domain.Transfer{}, fmt.Errorf("mark transfer executed: %w", err)
	}

	return r.FindByID(ctx, id)
}

func (r *TransferRepository) SearchBy(ctx context.Context, compiled querybuilder.CompiledQuery) ([]domain.TransferResult, error) {
	if compiled.Shape != querybuilder.TransferRows {
		return nil, fmt.Errorf("transfer search received result shape %d", compiled.Shape)
	}

	query, args, err := sqlx.Named(compiled.SQL, compiled.Params)
	if err != nil {
		return nil, fmt.Errorf("bind transfer search: %w", err)
	}

	rows, err := r.ext.QueryxContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("search transfers: %w", err)
	}
	defer rows.Close()

	results := make([]domain.TransferResult, 0)
	for rows.Next() {
		var (
			result        domain.TransferResult
			transferredAt sql.NullTime
			source        sql.NullString
			destination   sql.NullString
		)
		if err := rows.Scan(&result.TransferID, &transferredAt, &source, &destination, &result.Amount); err != nil {
			return nil, fmt.Errorf("scan transfer search row: %w", err)
		}
		if transferredAt.Valid {
			value := transferredAt.Time
			result.ExecutedAt = &value
		}
		result.SourceAccountNumber = source.String
		result.DestinationAccountNumber = destination.String
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfer search: %w", err)
	}
	return results, nil
}

func nullTime(value *time.Time) sql.NullTime {
	if value == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *value, Valid: true}
}
