package service_interfaces

import (
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
)

// CurrencyConverter expresses amount, held in from, in the to currency.
type CurrencyConverter interface {
	Convert(amount decimal.Decimal, from domain.Currency, to domain.Currency) (decimal.Decimal, error)
}
