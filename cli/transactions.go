package cli

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adnanrafiq/finledger/ledger"
)

type TxCmd struct {
	Add    TxAddCmd    `cmd:"" help:"Record a transaction."`
	Edit   TxEditCmd   `cmd:"" help:"Edit a transaction, reversing and reapplying its balance effects."`
	Delete TxDeleteCmd `cmd:"" help:"Delete a transaction, reversing its balance effects."`
	Show   TxShowCmd   `cmd:"" help:"Show one transaction."`
	List   TxListCmd   `cmd:"" help:"List transactions."`
}

type TxAddCmd struct {
	Kind           string           `help:"Transaction kind: income, expense, owners_equity or transfer." arg:""`
	Amount         decimal.Decimal  `help:"Amount in the account currency." arg:""`
	Account        uuid.UUID        `help:"Primary account ID." required:""`
	CounterAccount *uuid.UUID       `help:"Counter-party account ID (transfers)."`
	Category       *uuid.UUID       `help:"Category ID (income, expense, owners_equity)."`
	Subcategory    *uuid.UUID       `help:"Expense subcategory ID."`
	Team           *uuid.UUID       `help:"Team ID."`
	Description    string           `help:"Short description." default:""`
	Notes          string           `help:"Free-form notes." default:""`
	Date           string           `help:"Transaction date (YYYY-MM-DD, default today)."`
	Rate           *decimal.Decimal `help:"Override exchange rate to the reporting currency."`
	CounterRate    *decimal.Decimal `help:"Override counter-party exchange rate (transfers)."`
}

func (cmd *TxAddCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "tx add")
	defer report()

	kind, err := ledger.ParseKind(cmd.Kind)
	if err != nil {
		return err
	}

	in := ledger.TransactionInput{
		Kind:        kind,
		Amount:      cmd.Amount,
		AccountID:   cmd.Account,
		Description: cmd.Description,
		Notes:       cmd.Notes,
	}
	if cmd.CounterAccount != nil {
		in.CounterAccountID = *cmd.CounterAccount
	}
	if cmd.Category != nil {
		in.CategoryID = *cmd.Category
	}
	if cmd.Subcategory != nil {
		in.SubcategoryID = *cmd.Subcategory
	}
	if cmd.Team != nil {
		in.TeamID = *cmd.Team
	}
	if cmd.Rate != nil {
		in.Rate = *cmd.Rate
	}
	if cmd.CounterRate != nil {
		in.CounterRate = *cmd.CounterRate
	}
	if cmd.Date != "" {
		date, err := time.Parse("2006-01-02", cmd.Date)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", cmd.Date, err)
		}
		in.Date = date
	}

	transaction, err := svc.CreateTransaction(runCtx, in)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("recorded %s of %s %s (id %s)",
		transaction.Kind, transaction.Amount.StringFixed(2), transaction.CurrencyCode, transaction.ID))
	return nil
}

type TxEditCmd struct {
	ID             uuid.UUID        `help:"Transaction ID." arg:""`
	Kind           *string          `help:"New transaction kind."`
	Amount         *decimal.Decimal `help:"New amount."`
	Account        *uuid.UUID       `help:"New primary account ID."`
	CounterAccount *uuid.UUID       `help:"New counter-party account ID."`
	Category       *uuid.UUID       `help:"New category ID."`
	Subcategory    *uuid.UUID       `help:"New expense subcategory ID."`
	Team           *uuid.UUID       `help:"New team ID."`
	Description    *string          `help:"New description."`
	Notes          *string          `help:"New notes."`
	Date           *string          `help:"New transaction date (YYYY-MM-DD)."`
	Rate           *decimal.Decimal `help:"New exchange rate override."`
	CounterRate    *decimal.Decimal `help:"New counter-party rate override."`
}

func (cmd *TxEditCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "tx edit")
	defer report()

	patch := ledger.TransactionPatch{
		Amount:           cmd.Amount,
		AccountID:        cmd.Account,
		CounterAccountID: cmd.CounterAccount,
		CategoryID:       cmd.Category,
		SubcategoryID:    cmd.Subcategory,
		TeamID:           cmd.Team,
		Description:      cmd.Description,
		Notes:            cmd.Notes,
		Rate:             cmd.Rate,
		CounterRate:      cmd.CounterRate,
	}
	if cmd.Kind != nil {
		kind, err := ledger.ParseKind(*cmd.Kind)
		if err != nil {
			return err
		}
		patch.Kind = &kind
	}
	if cmd.Date != nil {
		date, err := time.Parse("2006-01-02", *cmd.Date)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", *cmd.Date, err)
		}
		patch.Date = &date
	}

	transaction, err := svc.EditTransaction(runCtx, cmd.ID, patch)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("edited %s %s, balances reversed and reapplied",
		transaction.Kind, transaction.ID))
	return nil
}

type TxDeleteCmd struct {
	ID    uuid.UUID `help:"Transaction ID." arg:""`
	Force bool      `help:"Skip the confirmation prompt." short:"f"`
}

func (cmd *TxDeleteCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "tx delete")
	defer report()

	transaction, err := svc.GetTransaction(runCtx, cmd.ID)
	if err != nil {
		return err
	}

	if !cmd.Force {
		confirmed, err := promptYesNo(ctx, fmt.Sprintf("Delete %s of %s %s?",
			transaction.Kind, transaction.Amount.StringFixed(2), transaction.CurrencyCode))
		if err != nil {
			return err
		}
		if !confirmed {
			printInfof(ctx.Stdout, "aborted")
			return nil
		}
	}

	if err := svc.DeleteTransaction(runCtx, cmd.ID); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, "transaction deleted, balances restored")
	return nil
}

type TxShowCmd struct {
	ID uuid.UUID `help:"Transaction ID." arg:""`
}

func (cmd *TxShowCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "tx show")
	defer report()

	transaction, err := svc.GetTransaction(runCtx, cmd.ID)
	if err != nil {
		return err
	}

	printInfof(ctx.Stdout, "%s %s %s on %s",
		transaction.Kind,
		amountStyle.Render(transaction.Amount.StringFixed(2)),
		transaction.CurrencyCode,
		transaction.Date.Format("2006-01-02"))
	fmt.Fprintf(ctx.Stdout, "  reporting amount: %s (rate %s)\n",
		transaction.AmountReporting.StringFixed(2), transaction.Rate.String())
	if transaction.Kind == ledger.KindTransfer {
		fmt.Fprintf(ctx.Stdout, "  counter-party: %s %s to account %s (rate %s)\n",
			transaction.CounterAmount.StringFixed(2), transaction.CounterCurrencyCode,
			transaction.CounterAccountID, transaction.CounterRate.String())
	}
	if transaction.Description != "" {
		fmt.Fprintf(ctx.Stdout, "  description: %s\n", transaction.Description)
	}
	return nil
}

type TxListCmd struct {
	Account  *uuid.UUID `help:"Filter by account (either side)."`
	Kind     *string    `help:"Filter by transaction kind."`
	Category *uuid.UUID `help:"Filter by category."`
	Team     *uuid.UUID `help:"Filter by team."`
	From     *string    `help:"Start date (YYYY-MM-DD)."`
	To       *string    `help:"End date (YYYY-MM-DD)."`
	Limit    int        `help:"Maximum transactions to list." default:"50"`
}

func (cmd *TxListCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "tx list")
	defer report()

	filter := ledger.TransactionFilter{Limit: cmd.Limit}
	if cmd.Account != nil {
		filter.TouchingAccountID = *cmd.Account
	}
	if cmd.Kind != nil {
		kind, err := ledger.ParseKind(*cmd.Kind)
		if err != nil {
			return err
		}
		filter.Kind = kind
	}
	if cmd.Category != nil {
		filter.CategoryID = *cmd.Category
	}
	if cmd.Team != nil {
		filter.TeamID = *cmd.Team
	}
	if cmd.From != nil {
		from, err := time.Parse("2006-01-02", *cmd.From)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", *cmd.From, err)
		}
		filter.From = from
	}
	if cmd.To != nil {
		to, err := time.Parse("2006-01-02", *cmd.To)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", *cmd.To, err)
		}
		filter.To = to
	}

	transactions, err := svc.Transactions(runCtx, filter)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tKIND\tAMOUNT\tCURRENCY\tDESCRIPTION\tID")
	for _, transaction := range transactions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			transaction.Date.Format("2006-01-02"),
			transaction.Kind,
			amountStyle.Render(transaction.Amount.StringFixed(2)),
			transaction.CurrencyCode,
			transaction.Description,
			dimStyle.Render(transaction.ID.String()),
		)
	}
	return w.Flush()
}
