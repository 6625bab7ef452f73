package ledger

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Error types for ledger validation and mutation errors.
//
// Every error below is rejected before any balance mutation is applied;
// callers can rely on the store being untouched whenever one of these is
// returned. ConcurrencyError is the single retryable condition and only
// at the whole-unit-of-work boundary.

// ValidationError marks errors caused by invalid caller input.
// All implementations reject the operation before any mutation.
type ValidationError interface {
	error
	validationError()
}

// InvalidAmountError is returned when a transaction amount is not strictly positive.
type InvalidAmountError struct {
	Amount decimal.Decimal
}

func (e *InvalidAmountError) Error() string {
	return fmt.Sprintf("transaction amount must be greater than zero, got %s", e.Amount)
}

func (e *InvalidAmountError) validationError() {}

// InvalidRateError is returned when an exchange rate is not strictly positive,
// or when an attempt is made to change the reporting currency's rate away from 1.
type InvalidRateError struct {
	Code string
	Rate decimal.Decimal
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid exchange rate %s for currency %s", e.Rate, e.Code)
}

func (e *InvalidRateError) validationError() {}

// SameAccountError is returned when a transfer names the same account on both sides.
type SameAccountError struct {
	AccountID uuid.UUID
}

func (e *SameAccountError) Error() string {
	return fmt.Sprintf("transfer source and counter-party account cannot be the same (%s)", e.AccountID)
}

func (e *SameAccountError) validationError() {}

// MissingFieldError is returned when a field required for the transaction
// kind is absent (account, category, counter-party account, team).
type MissingFieldError struct {
	Field string
	Kind  Kind
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s is required for %s transactions", e.Field, e.Kind)
}

func (e *MissingFieldError) validationError() {}

// CategoryMismatchError is returned when a category's kind does not match
// the transaction kind, or when a transfer carries a category.
type CategoryMismatchError struct {
	CategoryID   uuid.UUID
	CategoryKind Kind
	Kind         Kind
}

func (e *CategoryMismatchError) Error() string {
	return fmt.Sprintf("category %s has kind %s, want %s", e.CategoryID, e.CategoryKind, e.Kind)
}

func (e *CategoryMismatchError) validationError() {}

// SubcategoryMismatchError is returned when an expense subcategory does not
// belong to the selected parent category.
type SubcategoryMismatchError struct {
	SubcategoryID uuid.UUID
	CategoryID    uuid.UUID
}

func (e *SubcategoryMismatchError) Error() string {
	return fmt.Sprintf("subcategory %s does not belong to category %s", e.SubcategoryID, e.CategoryID)
}

func (e *SubcategoryMismatchError) validationError() {}

// CategoryCycleError is returned when a category would become its own ancestor.
type CategoryCycleError struct {
	CategoryID uuid.UUID
}

func (e *CategoryCycleError) Error() string {
	return fmt.Sprintf("category %s cannot be its own ancestor", e.CategoryID)
}

func (e *CategoryCycleError) validationError() {}

// MissingExchangeRateError is returned when a non-reporting currency has no
// usable rate, either from the registry or from the caller.
type MissingExchangeRateError struct {
	Code string
}

func (e *MissingExchangeRateError) Error() string {
	return fmt.Sprintf("no usable exchange rate for currency %s", e.Code)
}

func (e *MissingExchangeRateError) validationError() {}

// DuplicateError is returned when creating an entity whose unique key
// (account name, currency code) is already taken.
type DuplicateError struct {
	Entity string
	Key    string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s %s already exists", e.Entity, e.Key)
}

func (e *DuplicateError) validationError() {}

// NotFoundError is returned when an entity referenced by ID or code does not exist.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// ReferentialIntegrityError is returned when deleting an entity that is
// still referenced by live transactions.
type ReferentialIntegrityError struct {
	Entity string
	Key    string
}

func (e *ReferentialIntegrityError) Error() string {
	return fmt.Sprintf("%s %s is still referenced by transactions", e.Entity, e.Key)
}

// ConcurrencyError is returned when the backing store reports a
// serialization conflict. The whole unit of work is safe to retry since
// no partial mutation is ever persisted.
type ConcurrencyError struct {
	Err error
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("serialization conflict: %v", e.Err)
}

func (e *ConcurrencyError) Unwrap() error {
	return e.Err
}

// InvariantViolationError is returned when an account's stored balance
// diverges from the balance recomputed from its transaction history.
// This indicates a bug; further writes to the account should be held
// until it has been recalculated.
type InvariantViolationError struct {
	AccountID uuid.UUID
	Stored    decimal.Decimal
	Computed  decimal.Decimal
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("account %s balance invariant violated: stored %s, recomputed %s",
		e.AccountID, e.Stored, e.Computed)
}
