package main

import (
	"fmt"

	"mini-mart/internal/repository"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the starter catalog, leaving existing products untouched",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			inserted, err := repository.SeedCatalog(cmd.Context(), repository.NewProductRepository(e.db))
			if err != nil {
				return fmt.Errorf("failed to seed catalog: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d products\n", inserted)
			return nil
		},
	}
}
