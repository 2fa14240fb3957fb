package services

import (
	"github.com/api-sage/ledger-engine/src/internal/commons"
	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/api-sage/ledger-engine/src/internal/usecase/service_interfaces"
	"github.com/shopspring/decimal"
)

var _ service_interfaces.CurrencyConverter = (*FixedRateConverter)(nil)

const conversionScale = 2

// FixedRateConverter converts with a rate table fixed at construction.
type FixedRateConverter struct {
	rates domain.RateTable
}

func NewFixedRateConverter(rates domain.RateTable) *FixedRateConverter {
	return &FixedRateConverter{rates: rates.Clone()}
}

// Convert multiplies amount by the from->to rate and rounds half-even to
// cents. Same currency uses a rate of one and is still rounded.
func (c *FixedRateConverter) Convert(amount decimal.Decimal, from domain.Currency, to domain.Currency) (decimal.Decimal, error) {
	if from == to {
		return amount.RoundBank(conversionScale), nil
	}

	rate, ok := c.rates.Rate(from, to)
	if !ok {
		return decimal.Decimal{}, &commons.ConversionError{From: from.String(), To: to.String()}
	}
	return amount.Mul(rate).RoundBank(conversionScale), nil
}

// Rates returns a copy of the configured table.
func (c *FixedRateConverter) Rates() domain.RateTable {
	return c.rates.Clone()
}
