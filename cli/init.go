package cli

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adnanrafiq/finledger/ledger"
)

type InitCmd struct {
	SkipCategories bool `help:"Skip seeding the default category tree."`
}

// Seed currencies with their initial rates to the reporting currency.
var seedCurrencies = []struct {
	code string
	name string
	rate string
}{
	{"PKR", "Pakistani Rupee", "1.0000"},
	{"USD", "US Dollar", "280.0000"},
	{"GBP", "British Pound", "350.0000"},
}

var seedCategories = map[ledger.Kind]struct {
	main string
	subs []string
}{
	ledger.KindIncome: {
		main: "Income",
		subs: []string{"Revenue", "Investment Returns", "Other Income"},
	},
	ledger.KindExpense: {
		main: "Expense",
		subs: []string{"Office Rent", "Equipment", "Salaries", "Marketing", "Repairing", "Donation"},
	},
	ledger.KindOwnersEquity: {
		main: "Owners Equity",
		subs: []string{"Owner Drawings", "Capital Contribution"},
	},
}

func (cmd *InitCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "init")
	defer report()

	existing, err := svc.Currencies(runCtx)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(existing))
	for _, currency := range existing {
		known[currency.Code] = true
	}

	for _, seed := range seedCurrencies {
		if known[seed.code] {
			continue
		}
		rate, err := decimal.NewFromString(seed.rate)
		if err != nil {
			return err
		}
		if _, err := svc.CreateCurrency(runCtx, seed.code, seed.name, rate); err != nil {
			return err
		}
		printInfof(ctx.Stdout, "created currency %s (%s)", seed.code, seed.name)
	}

	if !cmd.SkipCategories {
		if err := cmd.seedCategories(runCtx, svc, ctx); err != nil {
			return err
		}
	}

	printSuccess(ctx.Stdout, "ledger initialized at "+globals.DB)
	return nil
}

func (cmd *InitCmd) seedCategories(runCtx context.Context, svc *ledger.Service, ctx *kong.Context) error {
	categories, err := svc.Categories(runCtx)
	if err != nil {
		return err
	}
	if len(categories) > 0 {
		printInfof(ctx.Stdout, "categories already present, skipping seed")
		return nil
	}

	for kind, seed := range seedCategories {
		main, err := svc.CreateCategory(runCtx, seed.main, kind, uuid.Nil)
		if err != nil {
			return err
		}
		for _, sub := range seed.subs {
			if _, err := svc.CreateCategory(runCtx, sub, kind, main.ID); err != nil {
				return err
			}
		}
		printInfof(ctx.Stdout, "seeded %d %s categories", len(seed.subs)+1, kind)
	}
	return nil
}
