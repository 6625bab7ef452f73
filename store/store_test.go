package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adnanrafiq/finledger/ledger"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "test.db"))
	assert.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func TestOpenCreatesBuckets(t *testing.T) {
	st := openTestStore(t)

	// A fresh database answers list queries on every bucket.
	err := st.View(context.Background(), func(tx ledger.Tx) error {
		if _, err := tx.Currencies(); err != nil {
			return err
		}
		if _, err := tx.Accounts(); err != nil {
			return err
		}
		if _, err := tx.Transactions(ledger.TransactionFilter{}); err != nil {
			return err
		}
		if _, err := tx.Categories(); err != nil {
			return err
		}
		_, err := tx.Teams()
		return err
	})
	assert.NoError(t, err)
}

func TestCurrencyRoundTrip(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	err := st.Update(ctx, func(tx ledger.Tx) error {
		return tx.PutCurrency(&ledger.Currency{
			Code:   "USD",
			Name:   "US Dollar",
			Rate:   decimal.RequireFromString("280.1234"),
			Active: true,
		})
	})
	assert.NoError(t, err)

	err = st.View(ctx, func(tx ledger.Tx) error {
		currency, err := tx.Currency("USD")
		assert.NoError(t, err)
		assert.Equal(t, "US Dollar", currency.Name)
		assert.True(t, currency.Rate.Equal(decimal.RequireFromString("280.1234")))

		_, err = tx.Currency("EUR")
		var notFound *ledger.NotFoundError
		assert.True(t, errorsAs(err, &notFound))
		assert.Equal(t, "currency", notFound.Entity)
		return nil
	})
	assert.NoError(t, err)
}

func TestUpdateRollsBackOnError(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	account := &ledger.Account{ID: uuid.New(), Name: "Cash", CurrencyCode: "PKR"}

	boom := &ledger.NotFoundError{Entity: "sentinel", Key: "x"}
	err := st.Update(ctx, func(tx ledger.Tx) error {
		if err := tx.PutAccount(account); err != nil {
			return err
		}
		return boom
	})
	assert.Error(t, err)

	// The write inside the failed unit must not be visible.
	err = st.View(ctx, func(tx ledger.Tx) error {
		_, err := tx.Account(account.ID)
		var notFound *ledger.NotFoundError
		assert.True(t, errorsAs(err, &notFound))
		return nil
	})
	assert.NoError(t, err)
}

func TestAccountsSortedByName(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	names := []string{"Zulu", "Alpha", "Mike"}
	err := st.Update(ctx, func(tx ledger.Tx) error {
		for _, name := range names {
			if err := tx.PutAccount(&ledger.Account{ID: uuid.New(), Name: name}); err != nil {
				return err
			}
		}
		return nil
	})
	assert.NoError(t, err)

	err = st.View(ctx, func(tx ledger.Tx) error {
		accounts, err := tx.Accounts()
		assert.NoError(t, err)
		assert.Equal(t, 3, len(accounts))
		assert.Equal(t, "Alpha", accounts[0].Name)
		assert.Equal(t, "Mike", accounts[1].Name)
		assert.Equal(t, "Zulu", accounts[2].Name)
		return nil
	})
	assert.NoError(t, err)
}

func TestTransactionsNewestFirstAndLimited(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	accountID := uuid.New()
	day := func(n int) time.Time {
		return time.Date(2026, time.January, n, 0, 0, 0, 0, time.UTC)
	}

	err := st.Update(ctx, func(tx ledger.Tx) error {
		for n := 1; n <= 3; n++ {
			transaction := &ledger.Transaction{
				ID:        uuid.New(),
				Kind:      ledger.KindIncome,
				Amount:    decimal.NewFromInt(int64(n)),
				AccountID: accountID,
				Date:      day(n),
			}
			if err := tx.PutTransaction(transaction); err != nil {
				return err
			}
		}
		return nil
	})
	assert.NoError(t, err)

	err = st.View(ctx, func(tx ledger.Tx) error {
		transactions, err := tx.Transactions(ledger.TransactionFilter{})
		assert.NoError(t, err)
		assert.Equal(t, 3, len(transactions))
		assert.True(t, transactions[0].Date.Equal(day(3)))
		assert.True(t, transactions[2].Date.Equal(day(1)))

		limited, err := tx.Transactions(ledger.TransactionFilter{Limit: 2})
		assert.NoError(t, err)
		assert.Equal(t, 2, len(limited))
		assert.True(t, limited[0].Date.Equal(day(3)))
		return nil
	})
	assert.NoError(t, err)
}

func TestTransactionsFilterByAccountAndKind(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	primary := uuid.New()
	counter := uuid.New()

	err := st.Update(ctx, func(tx ledger.Tx) error {
		if err := tx.PutTransaction(&ledger.Transaction{
			ID: uuid.New(), Kind: ledger.KindIncome, AccountID: primary,
		}); err != nil {
			return err
		}
		return tx.PutTransaction(&ledger.Transaction{
			ID: uuid.New(), Kind: ledger.KindTransfer,
			AccountID: primary, CounterAccountID: counter,
		})
	})
	assert.NoError(t, err)

	err = st.View(ctx, func(tx ledger.Tx) error {
		touching, err := tx.Transactions(ledger.TransactionFilter{TouchingAccountID: counter})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(touching))
		assert.Equal(t, ledger.KindTransfer, touching[0].Kind)

		byPrimary, err := tx.Transactions(ledger.TransactionFilter{AccountID: counter})
		assert.NoError(t, err)
		assert.Equal(t, 0, len(byPrimary))

		income, err := tx.Transactions(ledger.TransactionFilter{Kind: ledger.KindIncome})
		assert.NoError(t, err)
		assert.Equal(t, 1, len(income))
		return nil
	})
	assert.NoError(t, err)
}

func TestCategoriesSortedByKindThenName(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	err := st.Update(ctx, func(tx ledger.Tx) error {
		categories := []*ledger.Category{
			{ID: uuid.New(), Name: "Utilities", Kind: ledger.KindExpense},
			{ID: uuid.New(), Name: "Sales", Kind: ledger.KindIncome},
			{ID: uuid.New(), Name: "Office", Kind: ledger.KindExpense},
		}
		for _, c := range categories {
			if err := tx.PutCategory(c); err != nil {
				return err
			}
		}
		return nil
	})
	assert.NoError(t, err)

	err = st.View(ctx, func(tx ledger.Tx) error {
		categories, err := tx.Categories()
		assert.NoError(t, err)
		assert.Equal(t, 3, len(categories))
		assert.Equal(t, "Office", categories[0].Name)
		assert.Equal(t, "Utilities", categories[1].Name)
		assert.Equal(t, "Sales", categories[2].Name)
		return nil
	})
	assert.NoError(t, err)
}

func TestDeleteTransaction(t *testing.T) {
	st := openTestStore(t)
	ctx := context.Background()

	id := uuid.New()
	err := st.Update(ctx, func(tx ledger.Tx) error {
		return tx.PutTransaction(&ledger.Transaction{ID: id, Kind: ledger.KindIncome})
	})
	assert.NoError(t, err)

	err = st.Update(ctx, func(tx ledger.Tx) error {
		return tx.DeleteTransaction(id)
	})
	assert.NoError(t, err)

	err = st.View(ctx, func(tx ledger.Tx) error {
		_, err := tx.Transaction(id)
		var notFound *ledger.NotFoundError
		assert.True(t, errorsAs(err, &notFound))
		return nil
	})
	assert.NoError(t, err)
}

func TestCanceledContextAborts(t *testing.T) {
	st := openTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := st.Update(ctx, func(tx ledger.Tx) error { return nil })
	assert.Error(t, err)
	err = st.View(ctx, func(tx ledger.Tx) error { return nil })
	assert.Error(t, err)
}

func errorsAs[T error](err error, target *T) bool {
	if err == nil {
		return false
	}
	return errors.As(err, target)
}
