package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionInput is a transaction draft as received from the caller.
// Rate and CounterRate override the registry rate when positive; zero
// means "use the registry". Which other fields are required depends on
// the kind; classifyAndPrice resolves and validates them.
type TransactionInput struct {
	Kind             Kind
	Amount           decimal.Decimal
	AccountID        uuid.UUID
	CounterAccountID uuid.UUID
	CategoryID       uuid.UUID
	SubcategoryID    uuid.UUID
	TeamID           uuid.UUID
	Description      string
	Notes            string
	Date             time.Time
	Rate             decimal.Decimal
	CounterRate      decimal.Decimal
}

// classifyAndPrice validates a draft against the kind's field rules,
// resolves its currency and exchange-rate snapshots, and prices the
// derived amounts. It constructs the transaction with exactly the fields
// its kind carries; counter-party fields are populated for transfers
// only, and transfers never carry a category. No state is mutated.
func (s *Service) classifyAndPrice(tx Tx, id uuid.UUID, in TransactionInput) (*Transaction, error) {
	if _, err := ParseKind(string(in.Kind)); err != nil {
		return nil, &MissingFieldError{Field: "kind", Kind: in.Kind}
	}
	if !in.Amount.IsPositive() {
		return nil, &InvalidAmountError{Amount: in.Amount}
	}
	if in.AccountID == uuid.Nil {
		return nil, &MissingFieldError{Field: "account", Kind: in.Kind}
	}

	account, err := tx.Account(in.AccountID)
	if err != nil {
		return nil, err
	}

	rate, err := s.resolveRate(tx, account.CurrencyCode, in.Rate)
	if err != nil {
		return nil, err
	}

	date := in.Date
	if date.IsZero() {
		date = s.now()
	}

	transaction := &Transaction{
		ID:           id,
		Kind:         in.Kind,
		Amount:       RoundMoney(in.Amount),
		CurrencyCode: account.CurrencyCode,
		Rate:         rate,
		AccountID:    account.ID,
		Description:  in.Description,
		Notes:        in.Notes,
		Date:         date,
		CreatedAt:    s.now(),
	}
	transaction.AmountReporting = RoundMoney(transaction.Amount.Mul(rate))

	if in.Kind == KindTransfer {
		if err := s.priceTransfer(tx, transaction, in); err != nil {
			return nil, err
		}
	} else {
		if err := s.classifyCategorized(tx, transaction, in); err != nil {
			return nil, err
		}
	}

	return transaction, nil
}

// classifyCategorized handles income, expense and owners_equity drafts:
// category kind must match the transaction kind, expenses are recorded
// against a subcategory of the selected parent, and income/expense
// require a team.
func (s *Service) classifyCategorized(tx Tx, transaction *Transaction, in TransactionInput) error {
	if in.CategoryID == uuid.Nil {
		return &MissingFieldError{Field: "category", Kind: in.Kind}
	}

	category, err := tx.Category(in.CategoryID)
	if err != nil {
		return err
	}
	if category.Kind != in.Kind {
		return &CategoryMismatchError{CategoryID: category.ID, CategoryKind: category.Kind, Kind: in.Kind}
	}

	transaction.CategoryID = category.ID

	if in.Kind == KindExpense {
		switch {
		case in.SubcategoryID != uuid.Nil:
			subcategory, err := tx.Category(in.SubcategoryID)
			if err != nil {
				return err
			}
			if subcategory.ParentID != category.ID {
				return &SubcategoryMismatchError{SubcategoryID: subcategory.ID, CategoryID: category.ID}
			}
			// The leaf is what the transaction is recorded against.
			transaction.CategoryID = subcategory.ID
		case category.IsSubcategory():
			// Already a leaf; edits re-submit the stored leaf directly.
			transaction.CategoryID = category.ID
		default:
			return &MissingFieldError{Field: "subcategory", Kind: in.Kind}
		}
	}

	if in.TeamID == uuid.Nil {
		if in.Kind == KindIncome || in.Kind == KindExpense {
			return &MissingFieldError{Field: "team", Kind: in.Kind}
		}
	} else {
		if _, err := tx.Team(in.TeamID); err != nil {
			return err
		}
		transaction.TeamID = in.TeamID
	}

	return nil
}

// priceTransfer resolves both sides of a transfer. A side in the
// reporting currency is pinned at rate 1. Same-currency transfers credit
// the counter-party with the source amount unchanged; cross-currency
// transfers route through the reporting currency:
//
//	counter_amount = amount_reporting / counter_rate
func (s *Service) priceTransfer(tx Tx, transaction *Transaction, in TransactionInput) error {
	if in.CounterAccountID == uuid.Nil {
		return &MissingFieldError{Field: "counter-party account", Kind: in.Kind}
	}
	if in.CounterAccountID == in.AccountID {
		return &SameAccountError{AccountID: in.AccountID}
	}

	counterAccount, err := tx.Account(in.CounterAccountID)
	if err != nil {
		return err
	}

	counterRate, err := s.resolveRate(tx, counterAccount.CurrencyCode, in.CounterRate)
	if err != nil {
		return err
	}

	transaction.CounterAccountID = counterAccount.ID
	transaction.CounterCurrencyCode = counterAccount.CurrencyCode
	transaction.CounterRate = counterRate

	if counterAccount.CurrencyCode == transaction.CurrencyCode {
		transaction.CounterAmount = transaction.Amount
	} else {
		transaction.CounterAmount = RoundMoney(transaction.AmountReporting.Div(counterRate))
	}

	if in.TeamID != uuid.Nil {
		if _, err := tx.Team(in.TeamID); err != nil {
			return err
		}
		transaction.TeamID = in.TeamID
	}

	return nil
}

// resolveRate resolves a currency's rate to the reporting currency.
// A non-zero override must be positive for any currency. The reporting
// currency is always 1; otherwise a positive caller override wins, then
// the registry. A missing or non-positive rate for a foreign currency
// fails with MissingExchangeRateError.
func (s *Service) resolveRate(tx Tx, code string, override decimal.Decimal) (decimal.Decimal, error) {
	if !override.IsZero() && !override.IsPositive() {
		return decimal.Zero, &InvalidRateError{Code: code, Rate: override}
	}

	if code == s.reporting {
		return decimal.NewFromInt(1), nil
	}

	if override.IsPositive() {
		return RoundRate(override), nil
	}

	currency, err := tx.Currency(code)
	if err != nil {
		return decimal.Zero, &MissingExchangeRateError{Code: code}
	}
	if !currency.Active || !currency.Rate.IsPositive() {
		return decimal.Zero, &MissingExchangeRateError{Code: code}
	}
	return currency.Rate, nil
}
