package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Currency holds a currency's conversion rate to the reporting currency.
// The reporting currency's own entry always has rate 1. Rates are mutated
// only through SetRate / UpdateCurrencyRate; a rate change is the trigger
// for recalculating every account and transaction in that currency.
type Currency struct {
	Code      string          `json:"code"`
	Name      string          `json:"name"`
	Rate      decimal.Decimal `json:"rate"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
}

// CreateCurrency registers a currency with its initial rate to the
// reporting currency. The reporting currency itself must have rate 1.
// Codes are unique; a registered rate changes only through SetRate or
// UpdateCurrencyRate.
func (s *Service) CreateCurrency(ctx context.Context, code, name string, rate decimal.Decimal) (*Currency, error) {
	if !rate.IsPositive() {
		return nil, &InvalidRateError{Code: code, Rate: rate}
	}
	if code == s.reporting && !rate.Equal(decimal.NewFromInt(1)) {
		return nil, &InvalidRateError{Code: code, Rate: rate}
	}

	currency := &Currency{
		Code:      code,
		Name:      name,
		Rate:      RoundRate(rate),
		Active:    true,
		CreatedAt: s.now(),
	}

	err := s.update(ctx, func(tx Tx) error {
		_, err := tx.Currency(code)
		if err == nil {
			return &DuplicateError{Entity: "currency", Key: code}
		}
		var notFound *NotFoundError
		if !errors.As(err, &notFound) {
			return err
		}
		return tx.PutCurrency(currency)
	})
	if err != nil {
		return nil, err
	}
	return currency, nil
}

// Rate returns the current registry rate for a currency code.
// Unknown or inactive currencies fail with NotFoundError.
func (s *Service) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	var rate decimal.Decimal
	err := s.store.View(ctx, func(tx Tx) error {
		currency, err := tx.Currency(code)
		if err != nil {
			return err
		}
		if !currency.Active {
			return &NotFoundError{Entity: "currency", Key: code}
		}
		rate = currency.Rate
		return nil
	})
	if err != nil {
		return decimal.Zero, err
	}
	return rate, nil
}

// SetRate commits a new registry rate for a currency. It does not touch
// account or transaction state; UpdateCurrencyRate is the orchestration
// that also propagates the change through every affected balance.
func (s *Service) SetRate(ctx context.Context, code string, rate decimal.Decimal) (*Currency, error) {
	var currency *Currency
	err := s.update(ctx, func(tx Tx) error {
		var err error
		currency, err = s.setRate(tx, code, rate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return currency, nil
}

func (s *Service) setRate(tx Tx, code string, rate decimal.Decimal) (*Currency, error) {
	if !rate.IsPositive() {
		return nil, &InvalidRateError{Code: code, Rate: rate}
	}
	// The reporting currency is pinned at 1.
	if code == s.reporting && !rate.Equal(decimal.NewFromInt(1)) {
		return nil, &InvalidRateError{Code: code, Rate: rate}
	}

	currency, err := tx.Currency(code)
	if err != nil {
		return nil, err
	}

	currency.Rate = RoundRate(rate)
	if err := tx.PutCurrency(currency); err != nil {
		return nil, err
	}
	return currency, nil
}

// Currencies returns all registered currencies sorted by code.
func (s *Service) Currencies(ctx context.Context) ([]*Currency, error) {
	var currencies []*Currency
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		currencies, err = tx.Currencies()
		return err
	})
	if err != nil {
		return nil, err
	}
	return currencies, nil
}
