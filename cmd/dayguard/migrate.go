package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"dayguard/internal/config"
	"dayguard/internal/storage/sqlite"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply any pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			store, err := sqlite.Open(cmd.Context(), cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("applying migrations: %w", err)
			}
			defer store.Close()
			fmt.Println("migrations applied")
			return nil
		},
	}
}
