package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Transaction is one immutable entry of an account's ledger.
type Transaction struct {
	ID          int64
	AccountID   int64
	CreatedOn   time.Time
	Type        TransactionType
	Amount      decimal.Decimal
	Description string
}

func NewTransaction(amount decimal.Decimal, description string) Transaction {
	return Transaction{
		CreatedOn:   time.Now().UTC(),
		Type:        TransactionTypeFor(amount),
		Amount:      amount,
		Description: description,
	}
}

// TransactionTypeFor derives the entry type from the sign of the amount.
func TransactionTypeFor(amount decimal.Decimal) TransactionType {
	if amount.Sign() > 0 {
		return TransactionTypeCredit
	}
	return TransactionTypeDebit
}
