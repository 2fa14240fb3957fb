package domain

import (
	"math/rand/v2"
	"strings"

	"github.com/api-sage/ledger-engine/src/internal/commons"
)

// Currency is an ISO 4217 code supported by the ledger.
type Currency string

const (
	CurrencyCHF Currency = "CHF"
	CurrencyDKK Currency = "DKK"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencySEK Currency = "SEK"
	CurrencyUSD Currency = "USD"
)

// countryCodes lists the ISO 3166 countries whose accounts are held in each
// currency. Generated account numbers pick one of them as the IBAN prefix.
var countryCodes = map[Currency][]string{
	CurrencyCHF: {"LI", "CH"},
	CurrencyDKK: {"DK", "FO", "GL"},
	CurrencyEUR: {"AD", "AT", "BE", "FI", "FR", "DE", "GR", "IE", "IT", "LU", "MC", "NL", "PT", "SM", "SI", "ES", "ME"},
	CurrencyGBP: {"GB"},
	CurrencySEK: {"SE"},
	CurrencyUSD: {"US"},
}

func SupportedCurrencies() []Currency {
	return []Currency{CurrencyCHF, CurrencyDKK, CurrencyEUR, CurrencyGBP, CurrencySEK, CurrencyUSD}
}

func ParseCurrency(raw string) (Currency, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	if value == "" {
		return "", commons.NewValidationError("currency", "currency field is required")
	}

	currency := Currency(value)
	if !currency.IsValid() {
		return "", commons.NewValidationError("currency", "currency %s is not supported", raw)
	}
	return currency, nil
}

func (c Currency) IsValid() bool {
	_, ok := countryCodes[c]
	return ok
}

func (c Currency) CountryCodes() []string {
	codes := countryCodes[c]
	out := make([]string, len(codes))
	copy(out, codes)
	return out
}

// RandomCountryCode returns one of the currency's countries.
func (c Currency) RandomCountryCode() string {
	codes := countryCodes[c]
	if len(codes) == 0 {
		return ""
	}
	return codes[rand.IntN(len(codes))]
}

func (c Currency) String() string {
	return string(c)
}
