package ledger

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adnanrafiq/finledger/telemetry"
)

// Recalculation service: full replay of transaction history as the
// authoritative balance source, used for repair and for exchange-rate
// propagation.

// RecalculateAccount rebuilds an account's balances from its transaction
// history and persists the result. Idempotent: replaying any number of
// times yields the same balances.
func (s *Service) RecalculateAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account *Account

	err := s.update(ctx, func(tx Tx) error {
		var err error
		account, err = tx.Account(id)
		if err != nil {
			return err
		}
		if err := s.recomputeBalances(tx, account); err != nil {
			return err
		}
		return tx.PutAccount(account)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account", account.Name).
		Str("balance", account.CurrentBalance.String()).
		Str("balance_reporting", account.CurrentBalanceReporting.String()).
		Msg("account recalculated")

	return account, nil
}

// UpdateCurrencyRate commits a new registry rate and propagates it in
// the same atomic unit: every account in the currency is recomputed from
// scratch, every transaction in the currency gets its reporting amount
// refreshed from the new rate (the frozen snapshot rate is kept as an
// audit record), and every transfer whose counter-party is in the
// currency gets its counter amount re-derived. Idempotent for a given
// rate.
func (s *Service) UpdateCurrencyRate(ctx context.Context, code string, rate decimal.Decimal) error {
	timer := telemetry.FromContext(ctx).Start("rate propagation " + code)
	defer timer.End()

	err := s.update(ctx, func(tx Tx) error {
		currency, err := s.setRate(tx, code, rate)
		if err != nil {
			return err
		}
		return s.propagateRateChange(ctx, tx, currency, timer)
	})
	if err != nil {
		return err
	}

	s.log.Info().
		Str("currency", code).
		Str("rate", RoundRate(rate).String()).
		Msg("currency rate updated and propagated")

	return nil
}

// propagateRateChange fans a committed rate change out to every affected
// transaction and account within the surrounding store transaction.
// Transactions are refreshed first, accounts recomputed last; recomputing
// before the counter amounts settle would leave first-pass balances
// derived from stale figures.
func (s *Service) propagateRateChange(ctx context.Context, tx Tx, currency *Currency, timer telemetry.Timer) error {
	// Refresh the derived reporting amount of the currency's own
	// transactions; the snapshot rate stays untouched.
	refreshTimer := timer.Child("refresh reporting amounts")
	transactions, err := tx.Transactions(TransactionFilter{CurrencyCode: currency.Code})
	if err != nil {
		return err
	}
	for _, transaction := range transactions {
		if err := ctx.Err(); err != nil {
			return err
		}
		transaction.AmountReporting = RoundMoney(transaction.Amount.Mul(currency.Rate))
		if transaction.Kind == KindTransfer && transaction.CounterCurrencyCode == currency.Code {
			// Same-currency transfer: the counter side keeps the
			// source amount, only its book rate moves.
			transaction.CounterRate = currency.Rate
		}
		if err := tx.PutTransaction(transaction); err != nil {
			return err
		}
	}
	refreshTimer.End()

	// Re-derive the credited amount of transfers arriving into the
	// currency from other currencies.
	countersTimer := timer.Child("re-derive counter amounts")
	counters, err := tx.Transactions(TransactionFilter{
		Kind:                KindTransfer,
		CounterCurrencyCode: currency.Code,
	})
	if err != nil {
		return err
	}
	touched := make(map[uuid.UUID]bool)
	for _, transaction := range counters {
		if transaction.CurrencyCode == currency.Code {
			continue
		}
		reporting := RoundMoney(transaction.Amount.Mul(transaction.Rate))
		transaction.CounterRate = currency.Rate
		transaction.CounterAmount = RoundMoney(reporting.Div(currency.Rate))
		if err := tx.PutTransaction(transaction); err != nil {
			return err
		}
		touched[transaction.CounterAccountID] = true
	}
	countersTimer.End()

	// Accounts last: everything in the currency, plus any account whose
	// incoming counter amounts moved.
	accountsTimer := timer.Child("recompute accounts")
	defer accountsTimer.End()
	accounts, err := tx.Accounts()
	if err != nil {
		return err
	}
	for _, account := range accounts {
		if account.CurrencyCode != currency.Code && !touched[account.ID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.recomputeBalances(tx, account); err != nil {
			return err
		}
		if err := tx.PutAccount(account); err != nil {
			return err
		}
	}

	return nil
}

// CheckAccount verifies the balance invariant for one account: the
// stored native balance must equal the balance recomputed independently
// from the transaction history. A divergence is a bug, surfaced as
// InvariantViolationError and never swallowed; writes to the account
// should be held until it has been recalculated.
func (s *Service) CheckAccount(ctx context.Context, id uuid.UUID) error {
	return s.store.View(ctx, func(tx Tx) error {
		account, err := tx.Account(id)
		if err != nil {
			return err
		}
		return checkInvariant(tx, account)
	})
}

// CheckAll verifies the balance invariant for every account and returns
// all violations found.
func (s *Service) CheckAll(ctx context.Context) []error {
	var violations []error

	err := s.store.View(ctx, func(tx Tx) error {
		accounts, err := tx.Accounts()
		if err != nil {
			return err
		}
		for _, account := range accounts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := checkInvariant(tx, account); err != nil {
				s.log.Error().Err(err).Str("account", account.Name).Msg("balance invariant violated")
				violations = append(violations, err)
			}
		}
		return nil
	})
	if err != nil {
		violations = append(violations, err)
	}

	return violations
}

func checkInvariant(tx Tx, account *Account) error {
	transactions, err := tx.Transactions(TransactionFilter{TouchingAccountID: account.ID})
	if err != nil {
		return err
	}

	computed := nativeBalanceOf(account, transactions)
	if !computed.Equal(account.CurrentBalance) {
		return &InvariantViolationError{
			AccountID: account.ID,
			Stored:    account.CurrentBalance,
			Computed:  computed,
		}
	}
	return nil
}
