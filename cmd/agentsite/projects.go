package main

import (
	"github.com/spf13/cobra"

	"github.com/goliatone/go-agentsite/internal/projects"
)

func projectsCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "projects",
		Short: "List logged generations, newest first",
		RunE: func(cmd *cobra.Command, _ []string) error {
			projectStore, closeStore, err := a.store(cmd.Context())
			if err != nil {
				return err
			}
			defer closeStore()

			list, err := projectStore.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", projects.DefaultListLimit, "maximum number of projects")
	return cmd
}
