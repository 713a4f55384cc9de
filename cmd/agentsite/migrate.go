package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-agentsite/internal/projects"
)

func migrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Database.URL == "" {
				return errors.New("database.url is not configured")
			}
			if err := projects.Migrate(cmd.Context(), a.cfg.Database.URL); err != nil {
				return err
			}
			a.logger.Info("migrations applied")
			return nil
		},
	}
}
