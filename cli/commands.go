package cli

import (
	"context"
	"fmt"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog"

	"github.com/adnanrafiq/finledger"
	"github.com/adnanrafiq/finledger/ledger"
	"github.com/adnanrafiq/finledger/logger"
	"github.com/adnanrafiq/finledger/store"
	"github.com/adnanrafiq/finledger/telemetry"
)

// Globals defines global flags available to all commands.
type Globals struct {
	DB        string `help:"Path to the ledger database." default:"finledger.db" env:"FINLEDGER_DB"`
	Verbose   bool   `help:"Enable verbose logging." short:"v"`
	Telemetry bool   `help:"Show timing telemetry for operations."`
}

type Commands struct {
	Globals

	Init     InitCmd     `cmd:"" help:"Create the ledger database and seed currencies and categories."`
	Account  AccountCmd  `cmd:"" help:"Manage accounts."`
	Tx       TxCmd       `cmd:"" help:"Record, edit and delete transactions."`
	Rates    RatesCmd    `cmd:"" help:"Inspect and update exchange rates."`
	Category CategoryCmd `cmd:"" help:"Manage transaction categories."`
	Team     TeamCmd     `cmd:"" help:"Manage teams."`
	Check    CheckCmd    `cmd:"" help:"Verify the balance invariant for every account."`
}

// open wires a ledger service to the database named by the global flags.
// The caller closes the returned store.
func (g *Globals) open() (*ledger.Service, *store.Store, error) {
	level := zerolog.WarnLevel
	if g.Verbose {
		level = zerolog.InfoLevel
	}

	svc, st, err := finledger.Open(g.DB, ledger.WithLogger(logger.New(level)))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open ledger database %s: %w", g.DB, err)
	}
	return svc, st, nil
}

// runContext returns the context for a command run and a report function
// that prints collected telemetry, if enabled.
func (g *Globals) runContext(ctx *kong.Context, name string) (context.Context, telemetry.Timer, func()) {
	runCtx := context.Background()
	if !g.Telemetry {
		return runCtx, telemetry.FromContext(runCtx).Start(name), func() {}
	}

	collector := telemetry.NewTimingCollector()
	runCtx = telemetry.WithCollector(runCtx, collector)
	timer := collector.Start(name)

	return runCtx, timer, func() {
		timer.End()
		_, _ = fmt.Fprintln(ctx.Stderr)
		collector.Report(ctx.Stderr)
	}
}
