package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/spec-kit/portal-service/internal/persistence"
	"github.com/spec-kit/portal-service/internal/service"
)

// BackfillCommand holds the flags for backfill-contributors.
type BackfillCommand struct {
	open   Opener
	dryRun bool
}

// NewBackfillCommand creates the backfill-contributors command.
func NewBackfillCommand(open Opener) *cobra.Command {
	bc := &BackfillCommand{open: open}
	cmd := &cobra.Command{
		Use:   "backfill-contributors",
		Short: "Assign primary or secondary credit to untyped ledger entries",
		Long: `Scans every ticket. Entries without a contributor tier get primary when
they were assignees at the workflow's first employee node, secondary
otherwise. Tickets without any ledger are seeded from their assignees.`,
		Args: cobra.NoArgs,
		RunE: bc.Run,
	}
	cmd.Flags().BoolVar(&bc.dryRun, "dry-run", false, "Report what would change without writing")
	return cmd
}

// Run executes the backfill.
func (bc *BackfillCommand) Run(cmd *cobra.Command, _ []string) error {
	env, err := bc.open(cmd.Context())
	if err != nil {
		return err
	}
	defer env.Close()

	cache := persistence.NewRedis(env.Config.Redis, env.Logger)
	defer cache.Close()

	svc := service.NewBackfillService(env.Repos.Tickets, env.Repos.Functionalities,
		env.Logger, env.Metrics, env.Config.Tickets.UpdateRetries).WithCache(cache)
	report, err := svc.Run(cmd.Context(), bc.dryRun)
	if err != nil {
		return fmt.Errorf("backfill: %w", err)
	}

	out := cmd.OutOrStdout()
	if len(report.Changes) > 0 {
		tbl := table.NewWriter()
		tbl.SetOutputMirror(out)
		tbl.SetStyle(table.StyleLight)
		tbl.Style().Options.DrawBorder = false
		tbl.AppendHeader(table.Row{"Key", "Ticket", "Entries"})
		for _, c := range report.Changes {
			tbl.AppendRow(table.Row{c.Key, c.TicketID, c.Entries})
		}
		tbl.Render()
	}

	verb := "repaired"
	if report.DryRun {
		verb = "would repair"
	}
	fmt.Fprintf(out, "scanned %d tickets, %s %d (%d entries)\n",
		report.Scanned, verb, len(report.Changes), report.Entries())
	return nil
}
