package main

import (
	"fmt"
	"os"

	"github.com/metalagman/lintgate/internal/proc"
	"github.com/spf13/cobra"
)

func runCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:          "run <task>...",
		Short:        "Run tasks and everything they depend on",
		Long:         "Run tasks by name. A bare name such as lintCheck runs in every project; project:task selects one project.",
		SilenceUsage: true,
		Args:         cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := workDir()
			if err != nil {
				return err
			}
			cfg, err := loadConfig(dir)
			if err != nil {
				return err
			}
			g, err := buildGraph(cmd.Context(), cfg, dir, buildEnv{
				runner: proc.OSRunner{},
				stdout: os.Stdout,
				stderr: os.Stderr,
			})
			if err != nil {
				return err
			}

			var names []string
			for _, selector := range args {
				matched, err := g.Match(selector)
				if err != nil {
					return err
				}
				names = append(names, matched...)
			}

			if dryRun {
				order, err := g.Plan(names...)
				if err != nil {
					return err
				}
				for _, name := range order {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s SKIPPED\n", name)
				}
				return nil
			}

			report, runErr := g.Run(cmd.Context(), names...)
			printReport(cmd.ErrOrStderr(), report, runErr)
			return runErr
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "m", false, "print the tasks that would run without running them")
	return cmd
}
