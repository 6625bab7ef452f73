// Package rates loads exchange-rate files and applies them to the
// ledger. A rates file is a YAML mapping of currency code to its rate
// against the reporting currency:
//
//	USD: 280.0000
//	GBP: 355.2500
//
// Applying a file propagates each changed rate through every affected
// account and transaction.
package rates

import (
	"context"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/adnanrafiq/finledger/ledger"
)

// File is a parsed rates file.
type File struct {
	rates map[string]decimal.Decimal
}

// Load reads and parses a rates file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rates file: %w", err)
	}
	return Parse(data)
}

// Parse parses rates file contents.
func Parse(data []byte) (*File, error) {
	var raw map[string]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid rates file: %w", err)
	}

	rates := make(map[string]decimal.Decimal, len(raw))
	for code, value := range raw {
		rate, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid rate %q for currency %s: %w", value, code, err)
		}
		if !rate.IsPositive() {
			return nil, fmt.Errorf("rate for currency %s must be greater than zero, got %s", code, rate)
		}
		rates[code] = rate
	}

	return &File{rates: rates}, nil
}

// Rates returns the parsed code-to-rate mapping.
func (f *File) Rates() map[string]decimal.Decimal {
	return f.rates
}

// Apply pushes every rate in the file through the ledger service,
// skipping currencies whose registry rate already matches. Returns the
// codes that changed.
func Apply(ctx context.Context, svc *ledger.Service, f *File) ([]string, error) {
	var changed []string

	for code, rate := range f.rates {
		current, err := svc.Rate(ctx, code)
		if err != nil {
			return changed, err
		}
		if current.Equal(ledger.RoundRate(rate)) {
			continue
		}

		if err := svc.UpdateCurrencyRate(ctx, code, rate); err != nil {
			return changed, err
		}
		changed = append(changed, code)
	}

	return changed, nil
}
