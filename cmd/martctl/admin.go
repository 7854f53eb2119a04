package main

import (
	"fmt"
	"time"

	"mini-mart/internal/repository"
	"mini-mart/internal/service"

	"github.com/spf13/cobra"
)

func adminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin panel accounts",
	}

	var email, name, password string
	create := &cobra.Command{
		Use:   "create",
		Short: "Create an admin account",
		Example: `  martctl admin create --email owner@example.com --name Owner --password s3cret!`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			admins := service.NewAdminService(
				repository.NewAdminRepository(e.db),
				e.cfg.JWT.Secret,
				time.Duration(e.cfg.JWT.SessionTTLDays)*24*time.Hour,
			)
			admin, err := admins.CreateAdmin(cmd.Context(), email, name, password)
			if err != nil {
				return fmt.Errorf("failed to create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created admin %d <%s>\n", admin.ID, admin.Email)
			return nil
		},
	}
	create.Flags().StringVar(&email, "email", "", "login email")
	create.Flags().StringVar(&name, "name", "", "display name")
	create.Flags().StringVar(&password, "password", "", "password, at least 6 characters")
	create.MarkFlagRequired("email")
	create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
