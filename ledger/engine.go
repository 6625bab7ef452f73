package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance mutation engine.
//
// The store has no append-only journal to replay from, so undo must be
// exact algebraic reversal: every mutation applies a transaction's
// effect table (or its inverse) to the touched accounts inside one
// atomic store transaction. The store serializes units of work, which
// also gives two opposite-direction transfers between the same accounts
// a single effective order; no observer ever sees one side of a transfer
// without the other.

// CreateTransaction prices a draft, applies its effect table to the
// referenced account(s), and persists the transaction, all in one
// atomic unit. Validation failures abort before any balance mutation.
func (s *Service) CreateTransaction(ctx context.Context, in TransactionInput) (*Transaction, error) {
	var transaction *Transaction

	err := s.update(ctx, func(tx Tx) error {
		priced, err := s.classifyAndPrice(tx, uuid.New(), in)
		if err != nil {
			return err
		}

		if err := applyEffects(tx, priced.Effects()); err != nil {
			return err
		}
		if err := tx.PutTransaction(priced); err != nil {
			return err
		}

		transaction = priced
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction", transaction.ID.String()).
		Str("kind", transaction.Kind.String()).
		Str("amount", transaction.Amount.String()).
		Str("currency", transaction.CurrencyCode).
		Msg("transaction created")

	return transaction, nil
}

// TransactionPatch carries the fields of an edit. Nil fields keep the
// existing value; the merged draft is re-validated and re-priced in
// full, so a patch can legally change the kind, accounts or amount.
type TransactionPatch struct {
	Kind             *Kind
	Amount           *decimal.Decimal
	AccountID        *uuid.UUID
	CounterAccountID *uuid.UUID
	CategoryID       *uuid.UUID
	SubcategoryID    *uuid.UUID
	TeamID           *uuid.UUID
	Description      *string
	Notes            *string
	Date             *time.Time
	Rate             *decimal.Decimal
	CounterRate      *decimal.Decimal
}

// EditTransaction atomically reverses the stored transaction's effects,
// re-prices it with the patched fields, and applies the new effects.
// Reversal uses the stored figures, not a recompute, so the pre-edit
// balances are restored decimal-exactly before the new effects land.
func (s *Service) EditTransaction(ctx context.Context, id uuid.UUID, patch TransactionPatch) (*Transaction, error) {
	var transaction *Transaction

	err := s.update(ctx, func(tx Tx) error {
		existing, err := tx.Transaction(id)
		if err != nil {
			return err
		}

		draft := patchedInput(existing, patch)
		priced, err := s.classifyAndPrice(tx, existing.ID, draft)
		if err != nil {
			return err
		}
		priced.CreatedAt = existing.CreatedAt

		if err := applyEffects(tx, existing.InverseEffects()); err != nil {
			return err
		}
		if err := applyEffects(tx, priced.Effects()); err != nil {
			return err
		}
		if err := tx.PutTransaction(priced); err != nil {
			return err
		}

		transaction = priced
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("transaction", transaction.ID.String()).
		Str("kind", transaction.Kind.String()).
		Msg("transaction edited")

	return transaction, nil
}

// DeleteTransaction atomically applies the inverse of the transaction's
// effect table to the touched account(s) and removes the record.
func (s *Service) DeleteTransaction(ctx context.Context, id uuid.UUID) error {
	err := s.update(ctx, func(tx Tx) error {
		existing, err := tx.Transaction(id)
		if err != nil {
			return err
		}

		if err := applyEffects(tx, existing.InverseEffects()); err != nil {
			return err
		}
		return tx.DeleteTransaction(id)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("transaction", id.String()).Msg("transaction deleted")
	return nil
}

// GetTransaction returns a transaction snapshot by ID.
func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*Transaction, error) {
	var transaction *Transaction
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		transaction, err = tx.Transaction(id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transaction, nil
}

// Transactions returns transactions matching the filter, newest first.
func (s *Service) Transactions(ctx context.Context, filter TransactionFilter) ([]*Transaction, error) {
	var transactions []*Transaction
	err := s.store.View(ctx, func(tx Tx) error {
		var err error
		transactions, err = tx.Transactions(filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// applyEffects loads each touched account, applies its delta, and writes
// it back. Effects within one table may touch one or two accounts.
func applyEffects(tx Tx, effects []Effect) error {
	for _, effect := range effects {
		account, err := tx.Account(effect.AccountID)
		if err != nil {
			return err
		}
		account.applyDelta(effect.Native, effect.Reporting)
		if err := tx.PutAccount(account); err != nil {
			return err
		}
	}
	return nil
}

// patchedInput merges a patch onto a stored transaction, yielding the
// draft that re-pricing will validate in full. The stored rate snapshots
// carry over as overrides unless the patch replaces them: an edit
// reprices at the rates the transaction was recorded with, even when it
// moves to an account in another currency or the registry has changed
// since.
func patchedInput(existing *Transaction, patch TransactionPatch) TransactionInput {
	in := TransactionInput{
		Kind:             existing.Kind,
		Amount:           existing.Amount,
		AccountID:        existing.AccountID,
		CounterAccountID: existing.CounterAccountID,
		CategoryID:       existing.CategoryID,
		TeamID:           existing.TeamID,
		Description:      existing.Description,
		Notes:            existing.Notes,
		Date:             existing.Date,
		Rate:             existing.Rate,
		CounterRate:      existing.CounterRate,
	}

	if patch.Kind != nil {
		in.Kind = *patch.Kind
	}
	if patch.Amount != nil {
		in.Amount = *patch.Amount
	}
	if patch.AccountID != nil {
		in.AccountID = *patch.AccountID
	}
	if patch.CounterAccountID != nil {
		in.CounterAccountID = *patch.CounterAccountID
	}
	if patch.CategoryID != nil {
		in.CategoryID = *patch.CategoryID
	}
	if patch.SubcategoryID != nil {
		in.SubcategoryID = *patch.SubcategoryID
	}
	if patch.TeamID != nil {
		in.TeamID = *patch.TeamID
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.Notes != nil {
		in.Notes = *patch.Notes
	}
	if patch.Date != nil {
		in.Date = *patch.Date
	}
	if patch.Rate != nil {
		in.Rate = *patch.Rate
	}
	if patch.CounterRate != nil {
		in.CounterRate = *patch.CounterRate
	}

	return in
}
