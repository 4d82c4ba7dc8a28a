package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the session schema to postgres or sqlite",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("store")
		if name == "" {
			name = defaultStore()
		}
		if name != "postgres" && name != "sqlite" {
			return fmt.Errorf("unknown store %q (want postgres or sqlite)", name)
		}
		repo, _, err := openRepository(context.Background(), name)
		if err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		defer repo.DB.Close()
		fmt.Printf("Schema applied to %s\n", name)
		return nil
	},
}

func init() {
	migrateCmd.Flags().String("store", "", "Store to migrate: postgres or sqlite (defaults to postgres when DATABASE_URL is set)")
}
