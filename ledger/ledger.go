// Package ledger implements a multi-currency financial ledger: accounts
// denominated in arbitrary currencies, transactions recorded against
// those accounts, and materialized running balances in each account's
// native currency and in a normalized reporting currency.
//
// The core of the package is the balance mutation engine. Every account
// carries the invariant
//
//	current_balance == opening_balance + Σ signed effects of live transactions
//
// maintained incrementally: creating a transaction applies its effect
// table to the referenced account(s), deleting applies the exact
// algebraic inverse, and editing reverses the old effects before
// applying the new ones. A full recomputation from the transaction
// history serves as the correctness oracle and as the repair path after
// retroactive exchange-rate changes.
//
// All monetary arithmetic uses decimal values; balances are never
// touched outside a single atomic store transaction.
//
// Example usage:
//
//	svc := ledger.NewService(store)
//	account, err := svc.CreateAccount(ctx, ledger.CreateAccountInput{
//	    Name:         "USD-Wallet",
//	    CurrencyCode: "USD",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	_, err = svc.CreateTransaction(ctx, ledger.TransactionInput{
//	    Kind:      ledger.KindIncome,
//	    Amount:    decimal.NewFromInt(100),
//	    AccountID: account.ID,
//	    ...
//	})
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// DefaultReportingCurrency is the currency all balances are also
// expressed in for cross-currency aggregation.
const DefaultReportingCurrency = "PKR"

// maxRetries bounds retries of a unit of work on serialization conflicts.
const maxRetries = 3

// Service exposes the ledger's operations over a transactional store.
// Every mutation runs as one atomic unit of work; validation failures
// abort before any balance is touched.
type Service struct {
	store     Store
	log       zerolog.Logger
	now       func() time.Time
	reporting string
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Service) { s.log = log }
}

// WithClock sets the clock used for created_at and date defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithReportingCurrency overrides the reporting currency code.
func WithReportingCurrency(code string) Option {
	return func(s *Service) { s.reporting = code }
}

// NewService creates a ledger service on top of a store.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:     store,
		log:       zerolog.Nop(),
		now:       time.Now,
		reporting: DefaultReportingCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReportingCurrency returns the reporting currency code.
func (s *Service) ReportingCurrency() string {
	return s.reporting
}

// update runs fn as one atomic unit of work. Serialization conflicts are
// the only internally retried condition, and only here, at the unit
// boundary: since nothing partial is ever persisted the whole unit can
// be rerun from scratch.
func (s *Service) update(ctx context.Context, fn func(Tx) error) error {
	var err error
	for attempt := 0; attempt < maxRetries; attempt++ {
		err = s.store.Update(ctx, fn)

		var conflict *ConcurrencyError
		if !errors.As(err, &conflict) {
			return err
		}
		s.log.Warn().Err(err).Int("attempt", attempt+1).Msg("serialization conflict, retrying unit of work")
	}
	return err
}
