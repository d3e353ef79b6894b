// Package config provides configuration loading and management for lintgate.
package config

import (
	"os"
	"path/filepath"

	"github.com/metalagman/lintgate/internal/deps"
)

const (
	DefaultMainBranch = "main"
	DefaultJavaBin    = "java"
	DefaultMainClass  = "com.pinterest.ktlint.Main"
	DefaultSourceGlob = "src/**/*.kt"
	DefaultExtension  = ".kt"
	DefaultBuildDir   = "build"
	DefaultFileName   = ".lintgate.yaml"
	EnvPrefix         = "LINTGATE"
)

// Config is the root configuration.
type Config struct {
	Settings `mapstructure:",squash" yaml:",inline"`

	Projects []Project `json:"projects,omitempty"  mapstructure:"projects"  yaml:"projects,omitempty"`
	Linter   Linter    `json:"linter"              mapstructure:"linter"    yaml:"linter"`
	Sources  Sources   `json:"sources"             mapstructure:"sources"   yaml:"sources"`
	BuildDir string    `json:"build_dir,omitempty" mapstructure:"build_dir" yaml:"build_dir,omitempty"`
}

// Settings are the per-project linter options.
type Settings struct {
	Android       bool     `json:"android"                  mapstructure:"android"        yaml:"android"`
	DisabledRules []string `json:"disabled_rules,omitempty" mapstructure:"disabled_rules" yaml:"disabled_rules,omitempty"`
	MainBranch    string   `json:"main_branch"              mapstructure:"main_branch"    yaml:"main_branch"`
	Version       string   `json:"version"                  mapstructure:"version"        yaml:"version"`
}

// Project is one linted project of a multi-project build.
type Project struct {
	Name string `json:"name" mapstructure:"name" yaml:"name"`
	Dir  string `json:"dir"  mapstructure:"dir"  yaml:"dir"`
}

// Linter describes how the linter process is obtained and started.
type Linter struct {
	JavaBin    string   `json:"java_bin,omitempty"   mapstructure:"java_bin"   yaml:"java_bin,omitempty"`
	MainClass  string   `json:"main_class,omitempty" mapstructure:"main_class" yaml:"main_class,omitempty"`
	Classpath  []string `json:"classpath,omitempty"  mapstructure:"classpath"  yaml:"classpath,omitempty"`
	Repository string   `json:"repository,omitempty" mapstructure:"repository" yaml:"repository,omitempty"`
	CacheDir   string   `json:"cache_dir,omitempty"  mapstructure:"cache_dir"  yaml:"cache_dir,omitempty"`
}

// Sources selects the files linted by the whole-project tasks.
type Sources struct {
	Glob      string `json:"glob,omitempty"      mapstructure:"glob"      yaml:"glob,omitempty"`
	Extension string `json:"extension,omitempty" mapstructure:"extension" yaml:"extension,omitempty"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Settings: Settings{MainBranch: DefaultMainBranch},
		Linter: Linter{
			JavaBin:    DefaultJavaBin,
			MainClass:  DefaultMainClass,
			Repository: deps.MavenCentral,
			CacheDir:   DefaultCacheDir(),
		},
		Sources: Sources{
			Glob:      DefaultSourceGlob,
			Extension: DefaultExtension,
		},
		BuildDir: DefaultBuildDir,
	}
}

// Defaults flattens Default into viper keys.
func Defaults() map[string]any {
	d := Default()
	return map[string]any{
		"android":           d.Android,
		"main_branch":       d.MainBranch,
		"version":           d.Version,
		"disabled_rules":    []string{},
		"build_dir":         d.BuildDir,
		"linter.java_bin":   d.Linter.JavaBin,
		"linter.main_class": d.Linter.MainClass,
		"linter.classpath":  []string{},
		"linter.repository": d.Linter.Repository,
		"linter.cache_dir":  d.Linter.CacheDir,
		"sources.glob":      d.Sources.Glob,
		"sources.extension": d.Sources.Extension,
	}
}

// DefaultCacheDir is where resolved jars are kept.
func DefaultCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "lintgate")
}
