package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/metalagman/lintgate/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func defaultConfigYAML(version string) ([]byte, error) {
	cfg := config.Default()
	cfg.Version = version
	cfg.Linter.CacheDir = ""
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("marshal default config: %w", err)
	}
	return data, nil
}

func initCmd() *cobra.Command {
	var version string
	var force bool
	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Write a default lintgate config",
		Long:         "Write a default .lintgate.yaml to the working directory. The ktlint version must be filled in before tasks can run.",
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := workDir()
			if err != nil {
				return err
			}
			path := resolveConfigPath(dir, cfgFile)
			if _, err := os.Stat(path); err == nil && !force {
				log.Info().Str("path", path).Msg("config already exists, skipping")
				return nil
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("stat config: %w", err)
			}

			data, err := defaultConfigYAML(version)
			if err != nil {
				return err
			}
			log.Info().Str("path", path).Msg("writing default config")
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write default config: %w", err)
			}
			if version == "" {
				log.Warn().Msg("version is empty; set it before running lint tasks")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&version, "version", "", "ktlint version to pin")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config")
	return cmd
}
