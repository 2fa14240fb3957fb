package domain

import (
	"strings"
	"time"

	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/shopspring/decimal"
)

type AccountStatus string

const (
	AccountStatusActive   AccountStatus = "ACTIVE"
	AccountStatusDisabled AccountStatus = "DISABLED"
	AccountStatusDeleted  AccountStatus = "DELETED"
)

func ParseAccountStatus(raw string) (AccountStatus, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return "", commons.NewValidationError("status", "status field is required")
	}

	status := AccountStatus(value)
	switch status {
	case AccountStatusActive, AccountStatusDisabled, AccountStatusDeleted:
		return status, nil
	default:
		return "", commons.NewValidationError("status", "status %s is not supported", raw)
	}
}

// Account owns an insertion-ordered ledger of transactions. Its balance is
// always derived from that ledger and never stored.
type Account struct {
	ID            int64
	AccountNumber string
	Currency      Currency
	OpenedOn      time.Time
	Status        AccountStatus
	Transactions  []Transaction
}

func NewAccount(accountNumber string, currency Currency) Account {
	now := time.Now().UTC()
	return Account{
		AccountNumber: accountNumber,
		Currency:      currency,
		OpenedOn:      time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC),
		Status:        AccountStatusActive,
	}
}

// Add appends tx to the ledger. Zero-amount transactions are ignored and
// false is returned.
func (a *Account) Add(tx Transaction) bool {
	if tx.Amount.IsZero() {
		return false
	}

	tx.AccountID = a.ID
	a.Transactions = append(a.Transactions, tx)
	return true
}

func (a Account) Balance() decimal.Decimal {
	balance := decimal.Zero
	for _, tx := range a.Transactions {
		balance = balance.Add(tx.Amount)
	}
	return balance
}

func (a Account) IsActive() bool {
	return a.Status == AccountStatusActive
}

// PendingTransactions returns the entries that have not been persisted yet.
func (a Account) PendingTransactions() []Transaction {
	pending := make([]Transaction, 0)
	for _, tx := range a.Transactions {
		if tx.ID == 0 {
			pending = append(pending, tx)
		}
	}
	return pending
}

// AccountResult is one row of an account search.
type AccountResult struct {
	OpenedOn      time.Time
	AccountNumber string
	Balance       decimal.Decimal
	Currency      Currency
	Status        AccountStatus
}

// AccountOpening carries the inputs of an account opening. A zero ID lets
// the store assign one and an empty AccountNumber is generated from the
// currency.
type AccountOpening struct {
	ID            int64
	AccountNumber string
	Currency      string
	OpeningAmount *decimal.Decimal
	Description   string
}
