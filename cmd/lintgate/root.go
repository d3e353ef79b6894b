package main

import (
	"fmt"
	"os"

	"github.com/metalagman/lintgate/internal/config"
	"github.com/metalagman/lintgate/internal/logging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	debug      bool
	projectDir string
	rootCmd    = &cobra.Command{
		Use:           "lintgate",
		Short:         "lintgate runs ktlint over a whole project or only over changed files",
		SilenceErrors: true,
	}
)

// Execute runs the root command.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultFileName, "config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&projectDir, "project-dir", "p", "", "directory to run in (defaults to the current directory)")
	if err := viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config")); err != nil {
		return fmt.Errorf("bind config flag: %w", err)
	}
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logging.Init(debug)
	}
	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(initCmd())
	return rootCmd.Execute()
}

func workDir() (string, error) {
	if projectDir != "" {
		return projectDir, nil
	}
	return os.Getwd()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
}
