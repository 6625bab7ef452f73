package ledger

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Kind classifies a transaction by its effect on account balances.
type Kind string

const (
	KindUnknown      Kind = ""
	KindIncome       Kind = "income"
	KindExpense      Kind = "expense"
	KindOwnersEquity Kind = "owners_equity"
	KindTransfer     Kind = "transfer"
)

// ParseKind parses a transaction kind from its string form.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindIncome, KindExpense, KindOwnersEquity, KindTransfer:
		return Kind(s), nil
	default:
		return KindUnknown, fmt.Errorf("unknown transaction kind %q", s)
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	if k == KindUnknown {
		return "unknown"
	}
	return string(k)
}

// Transaction represents one monetary event against one or two accounts.
//
// Rate is a frozen snapshot of the exchange rate at creation time,
// independent of later registry changes; rate propagation rewrites the
// derived AmountReporting but leaves the snapshot as an audit record.
// Counter-party fields are set iff Kind == transfer. Fields are mutated
// only through the mutation engine's reverse+reapply protocol.
type Transaction struct {
	ID   uuid.UUID `json:"id"`
	Kind Kind      `json:"kind"`

	Amount          decimal.Decimal `json:"amount"`
	CurrencyCode    string          `json:"currency_code"`
	Rate            decimal.Decimal `json:"rate"`
	AmountReporting decimal.Decimal `json:"amount_reporting"`

	AccountID uuid.UUID `json:"account_id"`

	// Transfer only.
	CounterAccountID    uuid.UUID       `json:"counter_account_id,omitzero"`
	CounterCurrencyCode string          `json:"counter_currency_code,omitempty"`
	CounterRate         decimal.Decimal `json:"counter_rate"`
	CounterAmount       decimal.Decimal `json:"counter_amount"`

	CategoryID uuid.UUID `json:"category_id,omitzero"`
	TeamID     uuid.UUID `json:"team_id,omitzero"`

	Description string    `json:"description"`
	Notes       string    `json:"notes,omitempty"`
	Date        time.Time `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// Effect is a signed balance delta against a single account, in its
// native currency and in the reporting currency. Pricing returns effects
// instead of mutating accounts directly, keeping classification pure and
// making the mutation (and its exact inverse) explicit.
type Effect struct {
	AccountID uuid.UUID
	Native    decimal.Decimal
	Reporting decimal.Decimal
}

// Inverse returns the effect that exactly undoes this one.
func (e Effect) Inverse() Effect {
	return Effect{
		AccountID: e.AccountID,
		Native:    e.Native.Neg(),
		Reporting: e.Reporting.Neg(),
	}
}

// String returns a human-readable representation of the effect.
func (e Effect) String() string {
	return fmt.Sprintf("%s on %s (%s reporting)", e.Native, e.AccountID, e.Reporting)
}

// Effects computes the transaction's signed effect table:
//
//	income         +amount on account
//	expense        -amount on account
//	owners_equity  -amount on account
//	transfer       -amount on account, +counter_amount on counter-party
//
// Reporting deltas mirror the native deltas using each side's own
// snapshot rate. For transfers both sides derive from AmountReporting by
// construction, unless a user-entered counter rate made them diverge.
func (t *Transaction) Effects() []Effect {
	switch t.Kind {
	case KindIncome:
		return []Effect{{AccountID: t.AccountID, Native: t.Amount, Reporting: t.AmountReporting}}
	case KindExpense, KindOwnersEquity:
		return []Effect{{AccountID: t.AccountID, Native: t.Amount.Neg(), Reporting: t.AmountReporting.Neg()}}
	case KindTransfer:
		return []Effect{
			{AccountID: t.AccountID, Native: t.Amount.Neg(), Reporting: t.AmountReporting.Neg()},
			{
				AccountID: t.CounterAccountID,
				Native:    t.CounterAmount,
				Reporting: RoundMoney(t.CounterAmount.Mul(t.CounterRate)),
			},
		}
	default:
		return nil
	}
}

// InverseEffects computes the exact algebraic reversal of Effects.
func (t *Transaction) InverseEffects() []Effect {
	effects := t.Effects()
	inverted := make([]Effect, len(effects))
	for i, e := range effects {
		inverted[i] = e.Inverse()
	}
	return inverted
}
