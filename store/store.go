// Package store persists ledger entities in a bbolt database, one
// bucket per entity type with JSON-encoded records. A bbolt update
// transaction is the ledger's atomic unit of work: every write inside
// the callback commits together or not at all, and bbolt's single-writer
// model serializes concurrent units, which is what keeps two concurrent
// mutations against the same account (or two opposite-direction
// transfers) from racing.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"

	"github.com/adnanrafiq/finledger/ledger"
)

// Bucket names.
const (
	bucketCurrencies   = "currencies"
	bucketAccounts     = "accounts"
	bucketTransactions = "transactions"
	bucketCategories   = "categories"
	bucketTeams        = "teams"
)

// Store is the bbolt-backed implementation of ledger.Store.
type Store struct {
	db *bolt.DB
}

// Open opens (creating if necessary) the database at path and
// initializes the entity buckets.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		buckets := []string{bucketCurrencies, bucketAccounts, bucketTransactions, bucketCategories, bucketTeams}
		for _, bucket := range buckets {
			if _, err := tx.CreateBucketIfNotExists([]byte(bucket)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", bucket, err)
			}
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// View runs fn in a read-only transaction.
func (s *Store) View(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(btx *bolt.Tx) error {
		return fn(&storeTx{tx: btx})
	})
}

// Update runs fn in a writable transaction committed atomically.
func (s *Store) Update(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.Update(func(btx *bolt.Tx) error {
		return fn(&storeTx{tx: btx})
	})
}

// storeTx adapts a bolt transaction to ledger.Tx.
type storeTx struct {
	tx *bolt.Tx
}

func (t *storeTx) put(bucket string, key []byte, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s record: %w", bucket, err)
	}
	return t.tx.Bucket([]byte(bucket)).Put(key, data)
}

func (t *storeTx) get(bucket string, key []byte, v any, entity, display string) error {
	data := t.tx.Bucket([]byte(bucket)).Get(key)
	if data == nil {
		return &ledger.NotFoundError{Entity: entity, Key: display}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal %s record: %w", bucket, err)
	}
	return nil
}

func (t *storeTx) Currency(code string) (*ledger.Currency, error) {
	var currency ledger.Currency
	if err := t.get(bucketCurrencies, []byte(code), &currency, "currency", code); err != nil {
		return nil, err
	}
	return &currency, nil
}

func (t *storeTx) PutCurrency(c *ledger.Currency) error {
	return t.put(bucketCurrencies, []byte(c.Code), c)
}

func (t *storeTx) Currencies() ([]*ledger.Currency, error) {
	var currencies []*ledger.Currency
	err := t.tx.Bucket([]byte(bucketCurrencies)).ForEach(func(_, data []byte) error {
		var currency ledger.Currency
		if err := json.Unmarshal(data, &currency); err != nil {
			return err
		}
		currencies = append(currencies, &currency)
		return nil
	})
	if err != nil {
		return nil, err
	}
	// Keys are codes, so bucket order is already code order.
	return currencies, nil
}

func (t *storeTx) Account(id uuid.UUID) (*ledger.Account, error) {
	var account ledger.Account
	if err := t.get(bucketAccounts, id[:], &account, "account", id.String()); err != nil {
		return nil, err
	}
	return &account, nil
}

func (t *storeTx) PutAccount(a *ledger.Account) error {
	return t.put(bucketAccounts, a.ID[:], a)
}

func (t *storeTx) DeleteAccount(id uuid.UUID) error {
	return t.tx.Bucket([]byte(bucketAccounts)).Delete(id[:])
}

func (t *storeTx) Accounts() ([]*ledger.Account, error) {
	var accounts []*ledger.Account
	err := t.tx.Bucket([]byte(bucketAccounts)).ForEach(func(_, data []byte) error {
		var account ledger.Account
		if err := json.Unmarshal(data, &account); err != nil {
			return err
		}
		accounts = append(accounts, &account)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Name < accounts[j].Name
	})
	return accounts, nil
}

func (t *storeTx) Transaction(id uuid.UUID) (*ledger.Transaction, error) {
	var transaction ledger.Transaction
	if err := t.get(bucketTransactions, id[:], &transaction, "transaction", id.String()); err != nil {
		return nil, err
	}
	return &transaction, nil
}

func (t *storeTx) PutTransaction(tr *ledger.Transaction) error {
	return t.put(bucketTransactions, tr.ID[:], tr)
}

func (t *storeTx) DeleteTransaction(id uuid.UUID) error {
	return t.tx.Bucket([]byte(bucketTransactions)).Delete(id[:])
}

func (t *storeTx) Transactions(filter ledger.TransactionFilter) ([]*ledger.Transaction, error) {
	var transactions []*ledger.Transaction
	err := t.tx.Bucket([]byte(bucketTransactions)).ForEach(func(_, data []byte) error {
		var transaction ledger.Transaction
		if err := json.Unmarshal(data, &transaction); err != nil {
			return err
		}
		if filter.Matches(&transaction) {
			transactions = append(transactions, &transaction)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Newest first, creation time as tiebreaker.
	sort.Slice(transactions, func(i, j int) bool {
		if !transactions[i].Date.Equal(transactions[j].Date) {
			return transactions[i].Date.After(transactions[j].Date)
		}
		return transactions[i].CreatedAt.After(transactions[j].CreatedAt)
	})

	if filter.Limit > 0 && len(transactions) > filter.Limit {
		transactions = transactions[:filter.Limit]
	}
	return transactions, nil
}

func (t *storeTx) Category(id uuid.UUID) (*ledger.Category, error) {
	var category ledger.Category
	if err := t.get(bucketCategories, id[:], &category, "category", id.String()); err != nil {
		return nil, err
	}
	return &category, nil
}

func (t *storeTx) PutCategory(c *ledger.Category) error {
	return t.put(bucketCategories, c.ID[:], c)
}

func (t *storeTx) DeleteCategory(id uuid.UUID) error {
	return t.tx.Bucket([]byte(bucketCategories)).Delete(id[:])
}

func (t *storeTx) Categories() ([]*ledger.Category, error) {
	var categories []*ledger.Category
	err := t.tx.Bucket([]byte(bucketCategories)).ForEach(func(_, data []byte) error {
		var category ledger.Category
		if err := json.Unmarshal(data, &category); err != nil {
			return err
		}
		categories = append(categories, &category)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Kind != categories[j].Kind {
			return categories[i].Kind < categories[j].Kind
		}
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (t *storeTx) Team(id uuid.UUID) (*ledger.Team, error) {
	var team ledger.Team
	if err := t.get(bucketTeams, id[:], &team, "team", id.String()); err != nil {
		return nil, err
	}
	return &team, nil
}

func (t *storeTx) PutTeam(team *ledger.Team) error {
	return t.put(bucketTeams, team.ID[:], team)
}

func (t *storeTx) Teams() ([]*ledger.Team, error) {
	var teams []*ledger.Team
	err := t.tx.Bucket([]byte(bucketTeams)).ForEach(func(_, data []byte) error {
		var team ledger.Team
		if err := json.Unmarshal(data, &team); err != nil {
			return err
		}
		teams = append(teams, &team)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(teams, func(i, j int) bool {
		return teams[i].Name < teams[j].Name
	})
	return teams, nil
}
