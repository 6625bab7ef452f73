package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"github.com/google/uuid"

	"github.com/adnanrafiq/finledger/ledger"
)

type CategoryCmd struct {
	Add  CategoryAddCmd  `cmd:"" help:"Create a category."`
	List CategoryListCmd `cmd:"" help:"List categories by kind."`
}

type CategoryAddCmd struct {
	Name   string     `help:"Category name." arg:""`
	Kind   string     `help:"Category kind: income, expense or owners_equity." required:""`
	Parent *uuid.UUID `help:"Parent category ID (makes this a subcategory)."`
}

func (cmd *CategoryAddCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "category add")
	defer report()

	kind, err := ledger.ParseKind(cmd.Kind)
	if err != nil {
		return err
	}

	parentID := uuid.Nil
	if cmd.Parent != nil {
		parentID = *cmd.Parent
	}

	category, err := svc.CreateCategory(runCtx, cmd.Name, kind, parentID)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("created %s category %s (id %s)",
		category.Kind, category.Name, category.ID))
	return nil
}

type CategoryListCmd struct{}

func (cmd *CategoryListCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "category list")
	defer report()

	categories, err := svc.Categories(runCtx)
	if err != nil {
		return err
	}

	names := make(map[uuid.UUID]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tNAME\tPARENT\tID")
	for _, category := range categories {
		parent := ""
		if category.IsSubcategory() {
			parent = names[category.ParentID]
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			category.Kind, category.Name, parent, dimStyle.Render(category.ID.String()))
	}
	return w.Flush()
}

type TeamCmd struct {
	Add  TeamAddCmd  `cmd:"" help:"Create a team."`
	List TeamListCmd `cmd:"" help:"List teams."`
}

type TeamAddCmd struct {
	Name string `help:"Team name." arg:""`
}

func (cmd *TeamAddCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "team add")
	defer report()

	team, err := svc.CreateTeam(runCtx, cmd.Name)
	if err != nil {
		return err
	}

	printSuccess(ctx.Stdout, fmt.Sprintf("created team %s (id %s)", team.Name, team.ID))
	return nil
}

type TeamListCmd struct{}

func (cmd *TeamListCmd) Run(ctx *kong.Context, globals *Globals) error {
	svc, st, err := globals.open()
	if err != nil {
		return err
	}
	defer st.Close()

	runCtx, _, report := globals.runContext(ctx, "team list")
	defer report()

	teams, err := svc.Teams(runCtx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(ctx.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID")
	for _, team := range teams {
		fmt.Fprintf(w, "%s\t%s\n", team.Name, dimStyle.Render(team.ID.String()))
	}
	return w.Flush()
}
