// Package commands implements the portalctl subcommands.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is stamped at build time.
var Version = "dev"

// NewRootCommand assembles the command tree. open is called lazily by the
// subcommands that need the store.
func NewRootCommand(open Opener) *cobra.Command {
	root := &cobra.Command{
		Use:   "portalctl",
		Short: "Administrative tasks for the portal service",
		Long: `portalctl runs maintenance jobs against the portal store.

Commands:
  backfill-contributors  Repair contributor tiers on legacy tickets
  workflow               Import and validate functionality workflows
  employee               Manage employee accounts`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(NewBackfillCommand(open))
	root.AddCommand(NewWorkflowCommand(open))
	root.AddCommand(NewEmployeeCommand(open))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portalctl %s\n", Version)
		},
	})
	return root
}
