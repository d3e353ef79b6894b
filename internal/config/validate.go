package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// ValidateSettings checks raw settings, as read by viper, against the JSON schema.
func ValidateSettings(settings map[string]any) error {
	schemaLoader := gojsonschema.NewStringLoader(schemaJSON)
	documentLoader := gojsonschema.NewGoLoader(settings)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, schemaErr.String())
	}
	sort.Strings(errs)

	return fmt.Errorf("config schema validation failed: %s", strings.Join(errs, "; "))
}

// Validate checks the decoded configuration for conflicts the schema cannot express.
func (c Config) Validate() error {
	seen := make(map[string]bool, len(c.Projects))
	for _, p := range c.Projects {
		if seen[p.Name] {
			return fmt.Errorf("duplicate project name %q", p.Name)
		}
		seen[p.Name] = true
	}
	if !strings.HasPrefix(c.Sources.Extension, ".") {
		return fmt.Errorf("sources.extension must start with a dot, got %q", c.Sources.Extension)
	}
	return nil
}

// ProjectSettings returns the linter options a project sees.
func (c Config) ProjectSettings() Settings {
	s := c.Settings
	if strings.TrimSpace(s.MainBranch) == "" {
		s.MainBranch = DefaultMainBranch
	}
	s.DisabledRules = compact(s.DisabledRules)
	return s
}

func compact(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
