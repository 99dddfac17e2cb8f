package commands

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/spec-kit/portal-service/internal/service"
)

// NewWorkflowCommand groups the workflow subcommands.
func NewWorkflowCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Import and validate functionality workflows",
	}
	cmd.AddCommand(newWorkflowImportCommand(open))
	cmd.AddCommand(newWorkflowValidateCommand(open))
	return cmd
}

func newWorkflowImportCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Store every functionality defined in a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()

			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			svc := service.NewFunctionalityService(env.Repos.Functionalities, env.Logger)
			items, err := svc.Import(cmd.Context(), f)
			if err != nil {
				return fmt.Errorf("import %s: %w", args[0], err)
			}
			for _, item := range items {
				fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s)\n", item.ID, item.Name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d functionalities imported\n", len(items))
			return nil
		},
	}
}

func newWorkflowValidateCommand(open Opener) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [FILE]",
		Short: "Check workflow graphs in a YAML file, or in the store when no file is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return validateFile(cmd, args[0])
			}

			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			svc := service.NewFunctionalityService(env.Repos.Functionalities, env.Logger)
			invalid, err := svc.AuditStored(cmd.Context())
			if err != nil {
				return err
			}
			ids := make([]string, 0, len(invalid))
			for id := range invalid {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", id, invalid[id])
			}
			if len(ids) > 0 {
				return fmt.Errorf("%d stored workflows are invalid", len(ids))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "all stored workflows are valid")
			return nil
		},
	}
}

func validateFile(cmd *cobra.Command, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	items, err := service.DecodeFunctionalities(f)
	if err != nil {
		return err
	}
	failed := 0
	for i := range items {
		if err := service.ValidateFunctionality(&items[i]); err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", items[i].ID, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", items[i].ID)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d workflows are invalid", failed, len(items))
	}
	return nil
}
