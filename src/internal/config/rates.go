package config

import (
	"fmt"
	"os"

	"github.com/api-sage/ledger-engine/src/internal/domain"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// rateFile is the YAML layout of RATES_FILE:
//
//	rates:
//	  EUR:
//	    GBP: "0.89"
type rateFile struct {
	Rates map[string]map[string]string `yaml:"rates"`
}

// LoadRateTable returns the default table with any pairs from path laid
// over it. An empty path yields the default table.
func LoadRateTable(path string) (domain.RateTable, error) {
	table := domain.DefaultRateTable()
	if path == "" {
		return table, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rates file %q: %w", path, err)
	}

	var file rateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse rates file %q: %w", path, err)
	}

	for fromRaw, row := range file.Rates {
		from, err := domain.ParseCurrency(fromRaw)
		if err != nil {
			return nil, fmt.Errorf("rates file %q: %w", path, err)
		}
		for toRaw, rateRaw := range row {
			to, err := domain.ParseCurrency(toRaw)
			if err != nil {
				return nil, fmt.Errorf("rates file %q: %w", path, err)
			}
			rate, err := decimal.NewFromString(rateRaw)
			if err != nil {
				return nil, fmt.Errorf("rates file %q: rate %s->%s: %w", path, from, to, err)
			}
			if rate.Sign() <= 0 {
				return nil, fmt.Errorf("rates file %q: rate %s->%s must be positive", path, from, to)
			}
			table.Set(from, to, rate)
		}
	}
	return table, nil
}
