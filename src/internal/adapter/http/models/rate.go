package models

import (
	"strings"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
)

type RateResponse struct {
	FromCurrency string `json:"fromCurrency"`
	ToCurrency   string `json:"toCurrency"`
	Rate         string `json:"rate"`
}

type GetRateRequest struct {
	FromCurrency string `json:"fromCurrency"`
	ToCurrency   string `json:"toCurrency"`
}

func (r GetRateRequest) Validate() error {
	var errs []string

	if _, err := domain.ParseCurrency(r.FromCurrency); err != nil {
		errs = append(errs, "fromCurrency: "+validationMessage(err))
	}
	if _, err := domain.ParseCurrency(r.ToCurrency); err != nil {
		errs = append(errs, "toCurrency: "+validationMessage(err))
	}

	return validationFailure(errs)
}

type GetCcyRatesRequest struct {
	Amount  string `json:"amount"`
	FromCcy string `json:"fromCcy"`
	ToCcy   string `json:"toCcy"`
}

func (r GetCcyRatesRequest) Validate() error {
	var errs []string

	amount := strings.TrimSpace(r.Amount)
	if amount == "" {
		errs = append(errs, "amount is required")
	} else if _, err := decimal.NewFromString(amount); err != nil {
		errs = append(errs, "amount must be numeric")
	}

	if _, err := domain.ParseCurrency(r.FromCcy); err != nil {
		errs = append(errs, "fromCcy: "+validationMessage(err))
	}
	if _, err := domain.ParseCurrency(r.ToCcy); err != nil {
		errs = append(errs, "toCcy: "+validationMessage(err))
	}

	return validationFailure(errs)
}

type GetCcyRatesResponse struct {
	Amount          string `json:"amount"`
	FromCcy         string `json:"fromCcy"`
	ToCcy           string `json:"toCcy"`
	ConvertedAmount string `json:"convertedAmount"`
	RateUsed        string `json:"rateUsed"`
}
