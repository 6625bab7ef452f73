package cli

import (
	"fmt"

	"github.com/alecthomas/kong"
)

type CheckCmd struct{}

// Run verifies, for every account, that the stored balance equals the
// balance recomputed independently from the transaction history.
func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "check")
	defer report()

	violations := svc.CheckAll(runCtx)
	if len(violations) > 0 {
		for _, violation := range violations {
			printError(ctx.Stderr, violation.Error())
		}
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d account(s) out of balance; run 'finledger account recalc' to repair", len(violations)))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, "Check passed")
	return nil
}
