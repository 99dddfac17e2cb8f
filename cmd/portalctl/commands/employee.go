package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/spec-kit/portal-service/internal/service"
)

// NewEmployeeCommand groups the employee subcommands.
func NewEmployeeCommand(open Opener) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "employee",
		Short: "Manage employee accounts",
	}
	cmd.AddCommand(newCreateAdminCommand(open))
	return cmd
}

func newCreateAdminCommand(open Opener) *cobra.Command {
	var name, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create the first administrator if the email is not taken",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				password = os.Getenv("PORTAL_ADMIN_PASSWORD")
			}
			if email == "" || password == "" {
				return errors.New("--email and --password (or PORTAL_ADMIN_PASSWORD) are required")
			}

			env, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer env.Close()

			svc := service.NewAuthService(*env.Config, env.Repos.Employees)
			admin, created, err := svc.Bootstrap(cmd.Context(), name, email, password)
			if err != nil {
				return err
			}
			if !created {
				fmt.Fprintf(cmd.OutOrStdout(), "employee %s already exists (%s)\n", admin.Email, admin.ID)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", admin.Email, admin.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&email, "email", "", "Login email")
	cmd.Flags().StringVar(&password, "password", "", "Initial password")
	return cmd
}
