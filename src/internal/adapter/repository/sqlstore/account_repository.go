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

var _ repo_interfaces.AccountRepository = (*AccountRepository)(nil)

const selectAccountColumns = `SELECT id, account_number, currency, opened_on, status FROM bank_accounts`

type AccountRepository struct {
	ext     sqlx.ExtContext
	dialect Dialect
}

// Create never updates. A taken id or account number surfaces as a unique
// violation and maps to commons.ErrDuplicateRecord.
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	if err := r.create(ctx, account); err != nil {
		return err
	}
	return r.insertPendingTransactions(ctx, account)
}

func (r *AccountRepository) Save(ctx context.Context, account *domain.Account) error {
	if account.ID != 0 {
		const query = `
UPDATE bank_accounts
SET currency = ?,
    status = ?,
    updated_at = ?
WHERE id = ?`

		_, err := execRequiredRows(ctx, r.ext, query, string(account.Currency), string(account.Status), time.Now().UTC(), account.ID)
		switch {
		case err == nil:
			return r.insertPendingTransactions(ctx, account)
		case !errors.Is(err, errNoRowsAffected):
			logger.Error("account repository update failed", err, logger.Fields{
				"accountId": account.ID,
			})
			return fmt.Errorf("update account: %w", err)
		}
	}

	if err := r.create(ctx, account); err != nil {
		return err
	}
	return r.insertPendingTransactions(ctx, account)
}

func (r *AccountRepository) create(ctx context.Context, account *domain.Account) error {
	logger.Info("account repository create", logger.Fields{
		"accountNumber": account.AccountNumber,
		"currency":      account.Currency,
	})

	var err error
	if account.ID == 0 {
		const query = `
INSERT INTO bank_accounts (account_number, currency, opened_on, status)
VALUES (?, ?, ?, ?)
RETURNING id`
		err = r.ext.QueryRowxContext(ctx, r.ext.Rebind(query),
			account.AccountNumber,
			string(account.Currency),
			account.OpenedOn,
			string(account.Status),
		).Scan(&account.ID)
	} else {
		const query = `
INSERT INTO bank_accounts (id, account_number, currency, opened_on, status)
VALUES (?, ?, ?, ?, ?)`
		_, err = r.ext.ExecContext(ctx, r.ext.Rebind(query),
			account.ID,
			account.AccountNumber,
			string(account.Currency),
			account.OpenedOn,
			string(account.Status),
		)
		if err == nil && r.dialect.resyncIDs != "" {
			if _, syncErr := r.ext.ExecContext(ctx, r.dialect.resyncIDs); syncErr != nil {
				return fmt.Errorf("resync account ids: %w", syncErr)
			}
		}
	}

	if err != nil {
		logger.Error("account repository create failed", err, logger.Fields{
			"accountNumber": account.AccountNumber,
		})
		if r.dialect.isUniqueViolation(err) {
			return fmt.Errorf("create account %s: %w", account.AccountNumber, commons.ErrDuplicateRecord)
		}
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (r *AccountRepository) insertPendingTransactions(ctx context.Context, account *domain.Account) error {
	const query = `
INSERT INTO account_transactions (account_id, created_on, type, amount, description)
VALUES (?, ?, ?, ?, ?)
RETURNING id`

	for i := range account.Transactions {
		entry := &account.Transactions[i]
		if entry.ID != 0 {
			continue
		}

		entry.AccountID = account.ID
		if err := r.ext.QueryRowxContext(ctx, r.ext.Rebind(query),
			entry.AccountID,
			entry.CreatedOn,
			string(entry.Type),
			entry.Amount,
			entry.Description,
		).Scan(&entry.ID); err != nil {
			return fmt.Errorf("insert transaction for account %d: %w", account.ID, err)
		}
	}
	return nil
}

func (r *AccountRepository) FindByID(ctx context.Context, id int64) (domain.Account, error) {
	return r.findOne(ctx, selectAccountColumns+` WHERE id = ?`, id)
}

func (r *AccountRepository) FindByAccountNumber(ctx context.Context, accountNumber string) (domain.Account, error) {
	return r.findOne(ctx, selectAccountColumns+` WHERE account_number = ?`, accountNumber)
}

func (r *AccountRepository) findOne(ctx context.Context, query string, arg any) (domain.Account, error) {
	account, err := scanAccount(r.ext.QueryRowxContext(ctx, r.ext.Rebind(query), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Account{}, commons.ErrRecordNotFound
		}
		return domain.Account{}, fmt.Errorf("get account: %w", err)
	}

	ledgers, err := r.loadTransactions(ctx, `WHERE account_id = ?`, account.ID)
	if err != nil {
		return domain.Account{}, err
	}
	account.Transactions = ledgers[account.ID]
	return account, nil
}

func (r *AccountRepository) FindAll(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.ext.QueryxContext(ctx, selectAccountColumns+` ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	accounts := make([]domain.Account, 0)
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	_ = rows.Close()

	ledgers, err := r.loadTransactions(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i].Transactions = ledgers[accounts[i].ID]
	}
	return accounts, nil
}

func (r *AccountRepository) SearchBy(ctx context.Context, compiled querybuilder.CompiledQuery) ([]domain.AccountResult, error) {
	if compiled.Shape != querybuilder.AccountRows {
		return nil, fmt.Errorf("account search received result shape %d", compiled.Shape)
	}

	query, args, err := sqlx.Named(compiled.SQL, compiled.Params)
	if err != nil {
		return nil, fmt.Errorf("bind account search: %w", err)
	}

	rows, err := r.ext.QueryxContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("search accounts: %w", err)
	}
	defer rows.Close()

	results := make([]domain.AccountResult, 0)
	for rows.Next() {
		var (
			result   domain.AccountResult
			currency string
			status   string
		)
		if err := rows.Scan(&result.OpenedOn, &result.AccountNumber, &result.Balance, &currency, &status); err != nil {
			return nil, fmt.Errorf("scan account search row: %w", err)
		}
		result.Currency = domain.Currency(currency)
		result.Status = domain.AccountStatus(status)
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate account search: %w", err)
	}
	return results, nil
}

// loadTransactions returns ledgers keyed by account id, each in insertion order.
func (r *AccountRepository) loadTransactions(ctx context.Context, where string, args ...any) (map[int64][]domain.Transaction, error) {
	query := `SELECT id, account_id, created_on, type, amount, description FROM account_transactions ` + where + ` ORDER BY account_id, id`

	rows, err := r.ext.QueryxContext(ctx, r.ext.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	ledgers := make(map[int64][]domain.Transaction)
	for rows.Next() {
		var (
			entry     domain.Transaction
			entryType string
		)
		if err := rows.Scan(&entry.ID, &entry.AccountID, &entry.CreatedOn, &entryType, &entry.Amount, &entry.Description); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		entry.Type = domain.TransactionType(entryType)
		ledgers[entry.AccountID] = append(ledgers[entry.AccountID], entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transactions: %w", err)
	}
	return ledgers, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (domain.Account, error) {
	var (
		account  domain.Account
		currency string
		status   string
	)
	if err := row.Scan(&account.ID, &account.AccountNumber, &currency, &account.OpenedOn, &status); err != nil {
		return domain.Account{}, err
	}
	account.Currency = domain.Currency(currency)
	account.Status = domain.AccountStatus(status)
	return account, nil
}
