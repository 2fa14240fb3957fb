package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"unicode"
)

const (
	minIBANLength     = 15
	maxIBANLength     = 34
	defaultIBANLength = 24
)

// ibanLengths holds the registered IBAN length for the countries the ledger
// issues accounts in. Countries outside the registry get defaultIBANLength.
var ibanLengths = map[string]int{
	"AD": 24, "AT": 20, "BE": 16, "CH": 21, "DE": 22, "DK": 18, "ES": 24,
	"FI": 18, "FO": 18, "FR": 27, "GB": 22, "GL": 18, "GR": 27, "IE": 22,
	"IT": 27, "LI": 21, "LU": 20, "MC": 27, "ME": 22, "NL": 18, "PT": 25,
	"SE": 24, "SI": 19, "SM": 27,
}

// CleanAccountNumber strips every whitespace rune and upper-cases the rest.
func CleanAccountNumber(raw string) string {
	return strings.ToUpper(strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw))
}

// ValidateIBAN checks structure, registered length and the mod-97 checksum
// of an already cleaned account number.
func ValidateIBAN(iban string) error {
	if len(iban) < minIBANLength || len(iban) > maxIBANLength {
		return fmt.Errorf("invalid account number length %d", len(iban))
	}

	for i, r := range iban {
		switch {
		case i < 2 && (r < 'A' || r > 'Z'):
			return fmt.Errorf("invalid country code %q", iban[:2])
		case i >= 2 && i < 4 && (r < '0' || r > '9'):
			return fmt.Errorf("invalid check digits %q", iban[2:4])
		case i >= 4 && !isAlphaNumeric(r):
			return fmt.Errorf("invalid character %q in account number", r)
		}
	}

	if expected, ok := ibanLengths[iban[:2]]; ok && len(iban) != expected {
		return fmt.Errorf("account number for %s must have %d characters, got %d", iban[:2], expected, len(iban))
	}

	if mod97(iban[4:]+iban[:4]) != 1 {
		return fmt.Errorf("invalid account number checksum")
	}
	return nil
}

// GenerateIBAN builds a random numeric BBAN for country and prefixes it with
// valid check digits.
func GenerateIBAN(country string) string {
	country = strings.ToUpper(country)
	length, ok := ibanLengths[country]
	if !ok {
		length = defaultIBANLength
	}

	var bban strings.Builder
	for i := 0; i < length-4; i++ {
		bban.WriteByte(byte('0' + rand.IntN(10)))
	}

	check := 98 - mod97(bban.String()+country+"00")
	return fmt.Sprintf("%s%02d%s", country, check, bban.String())
}

// GenerateAccountNumber issues an IBAN in one of the currency's countries.
func GenerateAccountNumber(currency Currency) string {
	return GenerateIBAN(currency.RandomCountryCode())
}

func mod97(value string) int {
	remainder := 0
	for _, r := range value {
		switch {
		case r >= '0' && r <= '9':
			remainder = (remainder*10 + int(r-'0')) % 97
		case r >= 'A' && r <= 'Z':
			remainder = (remainder*100 + int(r-'A') + 10) % 97
		}
	}
	return remainder
}

func isAlphaNumeric(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z')
}
