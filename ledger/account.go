package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Account owns its balance fields exclusively. CurrentBalance and
// CurrentBalanceReporting are mutated only by the mutation engine's
// apply/reverse protocol and by recomputeBalances; direct assignment
// from outside the ledger package corrupts the balance invariant:
//
//	current_balance == opening_balance + Σ signed effects of live transactions
type Account struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`

	OpeningBalance          decimal.Decimal `json:"opening_balance"`
	CurrentBalance          decimal.Decimal `json:"current_balance"`
	CurrentBalanceReporting decimal.Decimal `json:"current_balance_reporting"`

	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// applyDelta adds to both balance fields directly. This is the engine's
// O(1) fast path; after any sequence of applies the native balance must
// equal what recomputeBalances would yield from the transaction history.
func (a *Account) applyDelta(native, reporting decimal.Decimal) {
	a.CurrentBalance = RoundMoney(a.CurrentBalance.Add(native))
	a.CurrentBalanceReporting = RoundMoney(a.CurrentBalanceReporting.Add(reporting))
}

// nativeBalanceOf folds an account's live transactions into its native
// balance: opening + income - expense - owners_equity - transfer_out
// + transfer_in. Pure function of the transaction set; calling it any
// number of times yields the same result.
func nativeBalanceOf(a *Account, transactions []*Transaction) decimal.Decimal {
	income := decimal.Zero
	expense := decimal.Zero
	equity := decimal.Zero
	transferOut := decimal.Zero
	transferIn := decimal.Zero

	for _, t := range transactions {
		switch {
		case t.Kind == KindIncome && t.AccountID == a.ID:
			income = income.Add(t.Amount)
		case t.Kind == KindExpense && t.AccountID == a.ID:
			expense = expense.Add(t.Amount)
		case t.Kind == KindOwnersEquity && t.AccountID == a.ID:
			equity = equity.Add(t.Amount)
		case t.Kind == KindTransfer && t.AccountID == a.ID:
			transferOut = transferOut.Add(t.Amount)
		case t.Kind == KindTransfer && t.CounterAccountID == a.ID:
			transferIn = transferIn.Add(t.CounterAmount)
		}
	}

	balance := a.OpeningBalance.Add(income).Sub(expense).Sub(equity).Sub(transferOut).Add(transferIn)
	return RoundMoney(balance)
}

// recomputeBalances rebuilds both balance fields authoritatively from the
// account's transaction history within tx. The reporting balance uses the
// currency's current registry rate, not transaction snapshots; it is the
// single source of truth used by the recalculation service.
func (s *Service) recomputeBalances(tx Tx, a *Account) error {
	transactions, err := tx.Transactions(TransactionFilter{TouchingAccountID: a.ID})
	if err != nil {
		return err
	}

	currency, err := tx.Currency(a.CurrencyCode)
	if err != nil {
		return err
	}

	a.CurrentBalance = nativeBalanceOf(a, transactions)
	a.CurrentBalanceReporting = RoundMoney(a.CurrentBalance.Mul(currency.Rate))
	return nil
}

// CreateAccountInput describes a new account.
type CreateAccountInput struct {
	Name           string
	CurrencyCode   string
	OpeningBalance decimal.Decimal
}

// CreateAccount creates an account with its current balance set to the
// opening balance and the reporting balance converted at the currency's
// current registry rate. Account names are unique.
func (s *Service) CreateAccount(ctx context.Context, in CreateAccountInput) (*Account, error) {
	account := &Account{
		ID:             uuid.New(),
		Name:           in.Name,
		CurrencyCode:   in.CurrencyCode,
		OpeningBalance: RoundMoney(in.OpeningBalance),
		Active:         true,
		CreatedAt:      s.now(),
	}

	err := s.update(ctx, func(tx Tx) error {
		existing, err := tx.Accounts()
		if err != nil {
			return err
		}
		for _, a := range existing {
			if a.Name == account.Name {
				return &DuplicateError{Entity: "account", Key: account.Name}
			}
		}

		currency, err := tx.Currency(in.CurrencyCode)
		if err != nil {
			return err
		}
		if !currency.Active {
			return &NotFoundError{Entity: "currency", Key: in.CurrencyCode}
		}

		account.CurrentBalance = account.OpeningBalance
		account.CurrentBalanceReporting = RoundMoney(account.CurrentBalance.Mul(currency.Rate))
		return tx.PutAccount(account)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("account", account.Name).
		Str("currency", account.CurrencyCode).
		Str("opening_balance", account.OpeningBalance.String()).
		Msg("account created")

	return account, nil
}

// GetAccount returns an account snapshot by ID.
func (s *Service) GetAccount(ctx context.Context, id uuid.UUID) (*Account, error) {
	var account *Account
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		account, err = tx.Account(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// Accounts returns all accounts sorted by name.
func (s *Service) Accounts(ctx context.Context) ([]*Account, error) {
	var accounts []*Account
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		accounts, err = tx.Accounts()
		return err
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// DeleteAccount removes an account. Deletion is refused while any
// transaction references the account as primary or counter-party.
func (s *Service) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	return s.update(ctx, func(tx Tx) error {
		account, err := tx.Account(id)
		if err != nil {
			return err
		}

		referencing, err := tx.Transactions(TransactionFilter{TouchingAccountID: id, Limit: 1})
		if err != nil {
			return err
		}
		if len(referencing) > 0 {
			return &ReferentialIntegrityError{Entity: "account", Key: account.Name}
		}

		return tx.DeleteAccount(id)
	})
}
