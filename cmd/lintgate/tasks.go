package main

import (
	"github.com/spf13/cobra"
)

func tasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "tasks",
		Short:        "List the registered tasks",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := workDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			g, err := buildGraph(cmd.Context(), cfg, dir, buildEnv{})
			if err != nil {
				return err
			}
			return printTasks(cmd.OutOrStdout(), g.Tasks())
		},
	}
}
