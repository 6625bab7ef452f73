// Package finledger is a multi-currency financial ledger with
// materialized running balances in each account's native currency and a
// normalized reporting currency.
//
// The heavy lifting lives in the ledger package; this package offers a
// convenience constructor wiring the ledger service to its bbolt store.
package finledger

import (
	"github.com/adnanrafiq/finledger/ledger"
	"github.com/adnanrafiq/finledger/store"
)

// Open opens the ledger database at path and returns a ready service.
// The returned store must be closed when done.
func Open(path string, opts ...ledger.Option) (*ledger.Service, *store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return ledger.NewService(st, opts...), st, nil
}
