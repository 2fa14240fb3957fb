package domain

import (
	"github.com/shopspring/decimal"
)

// RateTable maps a source currency to the rate for each destination currency.
type RateTable map[Currency]map[Currency]decimal.Decimal

// Rate returns the multiplier applied to an amount in from to express it in to.
func (t RateTable) Rate(from Currency, to Currency) (decimal.Decimal, bool) {
	row, ok := t[from]
	if !ok {
		return decimal.Decimal{}, false
	}
	rate, ok := row[to]
	return rate, ok
}

// Set registers or overrides a single pair.
func (t RateTable) Set(from Currency, to Currency, rate decimal.Decimal) {
	row, ok := t[from]
	if !ok {
		row = make(map[Currency]decimal.Decimal)
		t[from] = row
	}
	row[to] = rate
}

// Clone returns a deep copy so callers cannot mutate a converter's table.
func (t RateTable) Clone() RateTable {
	out := make(RateTable, len(t))
	for from, row := range t {
		for to, rate := range row {
			out.Set(from, to, rate)
		}
	}
	return out
}

// DefaultRateTable returns the bank's fixed cross rates.
func DefaultRateTable() RateTable {
	rows := map[Currency][6]string{
		CurrencyCHF: {"1", "6.82", "0.81", "0.91", "9.73", "1.01"},
		CurrencyUSD: {"0.98", "6.73", "0.80", "0.90", "9.59", "1"},
		CurrencyEUR: {"1.09", "7.46", "0.89", "1", "10.64", "1.10"},
		CurrencyDKK: {"0.14", "1", "0.11", "0.13", "1.42", "0.14"},
		CurrencySEK: {"0.10", "0.70", "0.08", "0.09", "1", "0.10"},
		CurrencyGBP: {"1.22", "8.38", "1", "1.12", "11.9", "1.24"},
	}
	columns := [6]Currency{CurrencyCHF, CurrencyDKK, CurrencyGBP, CurrencyEUR, CurrencySEK, CurrencyUSD}

	table := make(RateTable, len(rows))
	for from, values := range rows {
		for i, raw := range values {
			table.Set(from, columns[i], decimal.RequireFromString(raw))
		}
	}
	return table
}
