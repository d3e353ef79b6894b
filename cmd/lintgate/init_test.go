package main

import (
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigYAML_IsLoadable(t *testing.T) {
	resetViper(t)

	data, err := defaultConfigYAML("0.45.2")
	require.NoError(t, err)
	assert.NotContains(t, string(data), "cache_dir")

	dir := t.TempDir()
	writeTestFile(t, filepath.Join(dir, ".lintgate.yaml"), string(data))
	viper.Set("config", ".lintgate.yaml")

	cfg, err := loadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, "0.45.2", cfg.Version)
	assert.Equal(t, "main", cfg.MainBranch)
	assert.Equal(t, "src/**/*.kt", cfg.Sources.Glob)
}
