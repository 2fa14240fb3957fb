package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the wire format of transfer execution times.
const TimestampLayout = "2006/01/02 15:04:05"

// DateLayout is the wire format of account opening dates.
const DateLayout = "2006/01/02"

type TransferStatus string

const (
	TransferStatusPending  TransferStatus = "PENDING"
	TransferStatusExecuted TransferStatus = "EXECUTED"
)

// Transfer is a planned movement of funds between two accounts, referenced
// by id because both balances change when it runs.
type Transfer struct {
	ID                   int64
	Reference            string
	SourceAccountID      int64
	DestinationAccountID int64
	Amount               decimal.Decimal
	Description          string
	Timestamp            *time.Time
	Status               TransferStatus
	CreatedAt            time.Time
}

func (t Transfer) IsExecuted() bool {
	return t.Status == TransferStatusExecuted
}

// TransferResult is one row of a transfer search.
type TransferResult struct {
	TransferID               int64
	ExecutedAt               *time.Time
	SourceAccountNumber      string
	DestinationAccountNumber string
	Amount                   decimal.Decimal
}
