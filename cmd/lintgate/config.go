package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/metalagman/lintgate/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

func resolveConfigPath(dir, path string) string {
	if path == "" {
		path = config.DefaultFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	return path
}

func loadDotEnv(dir string) error {
	path := filepath.Join(dir, ".env")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func loadConfig(dir string) (config.Config, error) {
	if err := loadDotEnv(dir); err != nil {
		return config.Config{}, err
	}

	for key, value := range config.Defaults() {
		viper.SetDefault(key, value)
	}
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	flagPath := viper.GetString("config")
	path := resolveConfigPath(dir, flagPath)
	if _, err := os.Stat(path); err == nil {
		viper.SetConfigFile(path)
		if err := viper.ReadInConfig(); err != nil {
			return config.Config{}, fmt.Errorf("read config: %w", err)
		}
	} else if flagPath != "" && flagPath != config.DefaultFileName {
		return config.Config{}, fmt.Errorf("read config: %w", err)
	} else {
		log.Debug().Str("path", path).Msg("no config file, using defaults and environment")
	}

	settings := viper.AllSettings()
	delete(settings, "config")
	if err := config.ValidateSettings(settings); err != nil {
		return config.Config{}, err
	}

	cfg := config.Default()
	// LINTGATE_DISABLED_RULES=a,b arrives as one string.
	hook := viper.DecodeHook(mapstructure.StringToSliceHookFunc(","))
	if err := viper.Unmarshal(&cfg, hook); err != nil {
		return config.Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
