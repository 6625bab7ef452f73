package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adnanrafiq/finledger/ledger"
)

type AccountCmd struct {
	Add    AccountAddCmd    `cmd:"" help:"Create an account."`
	List   AccountListCmd   `cmd:"" help:"List accounts with balances."`
	Show   AccountShowCmd   `cmd:"" help:"Show one account."`
	Delete AccountDeleteCmd `cmd:"" help:"Delete an account without transactions."`
	Recalc AccountRecalcCmd `cmd:"" help:"Rebuild an account's balances from its transaction history."`
}

type AccountAddCmd struct {
	Name           string          `help:"Account name." arg:""`
	Currency       string          `help:"Account currency code." default:"PKR"`
	OpeningBalance decimal.Decimal `help:"Opening balance in the account currency." default:"0"`
}

func (cmd *AccountAddCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "account add")
	defer report()

	account, err := svc.CreateAccount(runCtx, ledger.CreateAccountInput{
		Name:           cmd.Name,
		CurrencyCode:   cmd.Currency,
		OpeningBalance: cmd.OpeningBalance,
	})
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("created account %s (%s) with id %s",
		account.Name, account.CurrencyCode, account.ID))
	return nil
}

type AccountListCmd struct{}

func (cmd *AccountListCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "account list")
	defer report()

	accounts, err := svc.Accounts(runCtx)
	if err != nil {
		return err
	}

	reporting := svc.ReportingCurrency()
	total := decimal.Zero

	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tCURRENCY\tBALANCE\tBALANCE (%s)\tID\n", reporting)
	for _, account := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			account.Name,
			account.CurrencyCode,
			amountStyle.Render(account.CurrentBalance.StringFixed(2)),
			amountStyle.Render(account.CurrentBalanceReporting.StringFixed(2)),
			dimStyle.Render(account.ID.String()),
		)
		total = total.Add(account.CurrentBalanceReporting)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	printInfof(ctx.Stdout, "total across accounts: %s %s", total.StringFixed(2), reporting)
	return nil
}

type AccountShowCmd struct {
	ID uuid.UUID `help:"Account ID." arg:""`
}

func (cmd *AccountShowCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "account show")
	defer report()

	account, err := svc.GetAccount(runCtx, cmd.ID)
	if err != nil {
		return err
	}

	printInfof(ctx.Stdout, "%s (%s)", account.Name, account.CurrencyCode)
	fmt.Fprintf(ctx.Stdout, "  opening balance: %s\n", account.OpeningBalance.StringFixed(2))
	fmt.Fprintf(ctx.Stdout, "  current balance: %s %s\n",
		amountStyle.Render(account.CurrentBalance.StringFixed(2)), account.CurrencyCode)
	fmt.Fprintf(ctx.Stdout, "  current balance: %s %s\n",
		amountStyle.Render(account.CurrentBalanceReporting.StringFixed(2)), svc.ReportingCurrency())
	return nil
}

type AccountDeleteCmd struct {
	ID    uuid.UUID `help:"Account ID." arg:""`
	Force bool      `help:"Skip the confirmation prompt." short:"f"`
}

func (cmd *AccountDeleteCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "account delete")
	defer report()

	account, err := svc.GetAccount(runCtx, cmd.ID)
	if err != nil {
		return err
	}

	if !cmd.Force {
		confirmed, err := promptYesNo(ctx, fmt.Sprintf("Delete account %s?", account.Name))
		if err != nil {
			return err
		}
		if !confirmed {
			printInfof(ctx.Stdout, "aborted")
			return nil
		}
	}

	if err := svc.DeleteAccount(runCtx, cmd.ID); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("deleted account %s", account.Name))
	return nil
}

type AccountRecalcCmd struct {
	ID uuid.UUID `help:"Account ID." arg:""`
}

func (cmd *AccountRecalcCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "account recalc")
	defer report()

	account, err := svc.RecalculateAccount(runCtx, cmd.ID)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("recalculated %s: %s %s (%s %s)",
		account.Name,
		account.CurrentBalance.StringFixed(2), account.CurrencyCode,
		account.CurrentBalanceReporting.StringFixed(2), svc.ReportingCurrency()))
	return nil
}
