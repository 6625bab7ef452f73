package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/adnanrafiq/finledger/logger"
	"github.com/adnanrafiq/finledger/rates"
)

type RatesCmd struct {
	List  RatesListCmd  `cmd:"" help:"List currencies and their rates to the reporting currency."`
	Set   RatesSetCmd   `cmd:"" help:"Update one currency rate and recalculate affected balances."`
	Apply RatesApplyCmd `cmd:"" help:"Apply a YAML rates file."`
	Watch RatesWatchCmd `cmd:"" help:"Watch a YAML rates file and apply changes as they happen."`
}

type RatesListCmd struct{}

func (cmd *RatesListCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "rates list")
	defer report()

	currencies, err := svc.Currencies(runCtx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "CODE\tNAME\tRATE (%s)\n", svc.ReportingCurrency())
	for _, currency := range currencies {
		fmt.Fprintf(w, "%s\t%s\t%s\n",
			currency.Code, currency.Name, amountStyle.Render(currency.Rate.StringFixed(4)))
	}
	return w.Flush()
}

type RatesSetCmd struct {
	Code string          `help:"Currency code." arg:""`
	Rate decimal.Decimal `help:"New rate to the reporting currency." arg:""`
}

func (cmd *RatesSetCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "rates set")
	defer report()

	if err := svc.UpdateCurrencyRate(runCtx, cmd.Code, cmd.Rate); err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("updated %s rate to %s and recalculated affected balances",
		cmd.Code, cmd.Rate.StringFixed(4)))
	return nil
}

type RatesApplyCmd struct {
	File string `help:"YAML rates file." arg:"" type:"existingfile"`
}

func (cmd *RatesApplyCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "rates apply")
	defer report()

	file, err := rates.Load(cmd.File)
	if err != nil {
		return err
	}

	changed, err := rates.Apply(runCtx, svc, file)
	if err != nil {
		return err
	}

	if len(changed) == 0 {
		printInfof(ctx.Stdout, "rates already current, nothing to do")
		return nil
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("applied rates for %v", changed))
	return nil
}

type RatesWatchCmd struct {
	File string `help:"YAML rates file to watch." arg:"" type:"existingfile"`
}

func (cmd *RatesWatchCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	level := zerolog.InfoLevel
	if globals.Verbose {
		level = zerolog.DebugLevel
	}
	log := logger.New(level)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	printInfof(ctx.Stdout, "watching %s, press Ctrl-C to stop", cmd.File)

	watcher := &rates.Watcher{Path: cmd.File, Service: svc, Log: log}
	if err := watcher.Run(runCtx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
