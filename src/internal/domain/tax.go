package domain

import "github.com/shopspring/decimal"

const TaxDescription = "Operational Banking Tax"

// TaxRunSummary reports the outcome of one ApplyRate pass.
type TaxRunSummary struct {
	Rate      decimal.Decimal
	Processed int
	Failed    int
}
