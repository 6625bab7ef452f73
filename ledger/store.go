package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the transactional persistence boundary the core consumes.
// Implementations must provide all-or-nothing semantics for Update: if
// the callback returns an error, none of the writes it performed become
// visible. Concurrent units of work touching the same account must be
// serialized by the implementation; a serialization conflict surfaces as
// ConcurrencyError and the whole unit is safe to retry.
type Store interface {
	// View runs fn in a read-only transaction.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn in a writable transaction committed atomically.
	Update(ctx context.Context, fn func(Tx) error) error
}

// Tx is a single store transaction. Lookups return NotFoundError for
// unknown keys.
type Tx interface {
	Currency(code string) (*Currency, error)
	PutCurrency(c *Currency) error
	Currencies() ([]*Currency, error)

	Account(id uuid.UUID) (*Account, error)
	PutAccount(a *Account) error
	DeleteAccount(id uuid.UUID) error
	Accounts() ([]*Account, error)

	Transaction(id uuid.UUID) (*Transaction, error)
	PutTransaction(t *Transaction) error
	DeleteTransaction(id uuid.UUID) error
	Transactions(filter TransactionFilter) ([]*Transaction, error)

	Category(id uuid.UUID) (*Category, error)
	PutCategory(c *Category) error
	DeleteCategory(id uuid.UUID) error
	Categories() ([]*Category, error)

	Team(id uuid.UUID) (*Team, error)
	PutTeam(t *Team) error
	Teams() ([]*Team, error)
}

// TransactionFilter narrows a transaction scan. Zero values mean "any".
type TransactionFilter struct {
	// AccountID matches the primary account only.
	AccountID uuid.UUID
	// TouchingAccountID matches either side of the transaction.
	TouchingAccountID uuid.UUID
	// CounterAccountID matches the counter-party account of transfers.
	CounterAccountID uuid.UUID
	// CurrencyCode matches the transaction's own currency.
	CurrencyCode string
	// CounterCurrencyCode matches the counter-party currency of transfers.
	CounterCurrencyCode string
	Kind                Kind
	CategoryID          uuid.UUID
	TeamID              uuid.UUID
	From                time.Time
	To                  time.Time
	Limit               int
}

// Matches reports whether a transaction passes the filter.
func (f TransactionFilter) Matches(t *Transaction) bool {
	if f.AccountID != uuid.Nil && t.AccountID != f.AccountID {
		return false
	}
	if f.TouchingAccountID != uuid.Nil &&
		t.AccountID != f.TouchingAccountID && t.CounterAccountID != f.TouchingAccountID {
		return false
	}
	if f.CounterAccountID != uuid.Nil && t.CounterAccountID != f.CounterAccountID {
		return false
	}
	if f.CurrencyCode != "" && t.CurrencyCode != f.CurrencyCode {
		return false
	}
	if f.CounterCurrencyCode != "" && t.CounterCurrencyCode != f.CounterCurrencyCode {
		return false
	}
	if f.Kind != KindUnknown && t.Kind != f.Kind {
		return false
	}
	if f.CategoryID != uuid.Nil && t.CategoryID != f.CategoryID {
		return false
	}
	if f.TeamID != uuid.Nil && t.TeamID != f.TeamID {
		return false
	}
	if !f.From.IsZero() && t.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && t.Date.After(f.To) {
		return false
	}
	return true
}
