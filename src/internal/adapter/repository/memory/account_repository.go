package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/api-sage/ledger-engine/src/internal/adapter/repository/repo_interfaces"
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/querybuilder"
)

var _ repo_interfaces.AccountRepository = (*AccountRepository)(nil)

type AccountRepository struct {
	data *dataset
}

func (r *AccountRepository) Create(_ context.Context, account *domain.Account) error {
	d := r.data
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.accounts[account.ID]; account.ID != 0 && exists {
		return fmt.Errorf("create account %d: %w", account.ID, commons.ErrDuplicateRecord)
	}
	if err := d.insertAccount(account); err != nil {
		return err
	}
	d.appendPending(account)
	return nil
}

func (r *AccountRepository) Save(_ context.Context, account *domain.Account) error {
	d := r.data
	d.mu.Lock()
	defer d.mu.Unlock()

	stored, exists := d.accounts[account.ID]
	if account.ID == 0 || !exists {
		if err := d.insertAccount(account); err != nil {
			return err
		}
		stored = d.accounts[account.ID]
	}

	stored.Currency = account.Currency
	stored.Status = account.Status
	d.accounts[account.ID] = stored

	d.appendPending(account)
	return nil
}

// insertAccount stores a new account row, assigning an id when it has none.
// Callers hold d.mu.
func (d *dataset) insertAccount(account *domain.Account) error {
	if _, taken := d.numbers[account.AccountNumber]; taken {
		return fmt.Errorf("save account %s: %w", account.AccountNumber, commons.ErrDuplicateRecord)
	}
	if account.ID == 0 {
		d.nextAccount++
		account.ID = d.nextAccount
	} else if account.ID > d.nextAccount {
		d.nextAccount = account.ID
	}
	d.accounts[account.ID] = domain.Account{
		ID:            account.ID,
		AccountNumber: account.AccountNumber,
		Currency:      account.Currency,
		OpenedOn:      account.OpenedOn,
		Status:        account.Status,
	}
	d.numbers[account.AccountNumber] = account.ID
	return nil
}

// appendPending records the transactions that have no id yet.
func (d *dataset) appendPending(account *domain.Account) {
	for i := range account.Transactions {
		entry := &account.Transactions[i]
		if entry.ID != 0 {
			continue
		}
		d.nextEntry++
		entry.ID = d.nextEntry
		entry.AccountID = account.ID
		d.transactions[account.ID] = append(d.transactions[account.ID], *entry)
	}
}

func (r *AccountRepository) FindByID(_ context.Context, id int64) (domain.Account, error) {
	d := r.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	account, ok := d.accounts[id]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return d.withLedger(account), nil
}

func (r *AccountRepository) FindByAccountNumber(_ context.Context, accountNumber string) (domain.Account, error) {
	d := r.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	id, ok := d.numbers[accountNumber]
	if !ok {
		return domain.Account{}, commons.ErrRecordNotFound
	}
	return d.withLedger(d.accounts[id]), nil
}

func (r *AccountRepository) FindAll(_ context.Context) ([]domain.Account, error) {
	d := r.data
	d.mu.RLock()
	defer d.mu.RUnlock()

	accounts := make([]domain.Account, 0, len(d.accounts))
	for _, account := range d.accounts {
		accounts = append(accounts, d.withLedger(account))
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].ID < accounts[j].ID })
	return accounts, nil
}

func (r *AccountRepository) SearchBy(_ context.Context, query querybuilder.CompiledQuery) ([]domain.AccountResult, error) {
	if query.Shape != querybuilder.AccountRows {
		return nil, fmt.Errorf("account search received result shape %d", query.Shape)
	}

	d := r.data
	d.mu.RLock()
	ids := make([]int64, 0, len(d.accounts))
	for id := range d.accounts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	rows := make([]domain.AccountResult, 0, len(ids))
	for _, id := range ids {
		account := d.withLedger(d.accounts[id])
		rows = append(rows, domain.AccountResult{
			OpenedOn:      account.OpenedOn,
			AccountNumber: account.AccountNumber,
			Balance:       account.Balance(),
			Currency:      account.Currency,
			Status:        account.Status,
		})
	}
	d.mu.RUnlock()

	return filterAndSort(rows, query, accountValue), nil
}

// withLedger must be called with d.mu held.
func (d *dataset) withLedger(account domain.Account) domain.Account {
	account.Transactions = append([]domain.Transaction(nil), d.transactions[account.ID]...)
	return account
}

func accountValue(row domain.AccountResult, field string) any {
	switch field {
	case querybuilder.FieldAccountNumber:
		return row.AccountNumber
	case querybuilder.FieldBalance:
		return row.Balance
	case querybuilder.FieldStatus:
		return string(row.Status)
	case querybuilder.FieldCurrency:
		return string(row.Currency)
	default:
		return nil
	}
}
