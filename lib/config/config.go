// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultFileName is looked up in the working directory when neither
// --config nor ENVVARS_CONFIG is given.
const DefaultFileName = "envvars.yaml"

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the envvars tool configuration.
type Config struct {
	// Rules is the path to the rule file describing the context tree.
	Rules string `yaml:"rules"`

	// Catalogs are macro catalog files, layered in order.
	Catalogs []string `yaml:"catalogs"`

	// NamingPolicy is the naming policy schema file. Empty disables
	// naming validation.
	NamingPolicy string `yaml:"naming_policy"`

	// KeyRegistries are foreign-key registry files. The first registry
	// that knows a context answers for it. Empty disables the check.
	KeyRegistries []string `yaml:"key_registries"`

	// Values are the default selector values, by context name.
	Values map[string]string `yaml:"values"`

	// Output configures rendering.
	Output OutputConfig `yaml:"output"`

	// Profile selects one of Profiles.
	Profile string `yaml:"profile"`

	// Profiles are named overrides applied after the base values.
	Profiles map[string]*Overrides `yaml:"profiles,omitempty"`

	// path is the file this configuration was loaded from, if any.
	path string
}

// OutputConfig configures rendering.
type OutputConfig struct {
	// Format is the output format name.
	// Default: env
	Format string `yaml:"format"`

	// SecretName is the Kubernetes Secret for secretKeyRef entries.
	// Default: envvarsecrets
	SecretName string `yaml:"secret_name"`

	// ConfigMapName is the ConfigMap for configMapKeyRef entries.
	// Default: envvardata
	ConfigMapName string `yaml:"config_map_name"`

	// Color is auto, always or never.
	// Default: auto
	Color string `yaml:"color"`
}

// Overrides are the fields a profile may replace. Values are merged key
// by key; everything else replaces the base when set.
type Overrides struct {
	Catalogs      []string          `yaml:"catalogs,omitempty"`
	KeyRegistries []string          `yaml:"key_registries,omitempty"`
	Values        map[string]string `yaml:"values,omitempty"`
	Output        *OutputConfig     `yaml:"output,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Values: map[string]string{},
		Output: OutputConfig{
			Format:        "env",
			SecretName:    "envvarsecrets",
			ConfigMapName: "envvardata",
			Color:         ColorAuto,
		},
	}
}

// Load finds and loads the configuration without an explicit path:
// ENVVARS_CONFIG if set, else ./envvars.yaml if present, else the
// defaults. Environment overrides apply in every case.
func Load() (*Config, error) {
	if configPath := os.Getenv("ENVVARS_CONFIG"); configPath != "" {
		return LoadFile(configPath)
	}
	if _, err := os.Stat(DefaultFileName); err == nil {
		return LoadFile(DefaultFileName)
	}

	cfg := Default()
	cfg.applyEnvironment()
	if err := cfg.applyProfile(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()
	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}
	cfg.path = path

	// ENVVARS_PROFILE can pick the profile, so the environment is read
	// before profiles are applied and again after so that it wins.
	cfg.applyEnvironment()
	if err := cfg.applyProfile(); err != nil {
		return nil, err
	}
	cfg.applyEnvironment()

	cfg.expandVariables()
	cfg.resolvePaths(filepath.Dir(path))
	return cfg, nil
}

// Path returns the file the configuration was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	if c.Values == nil {
		c.Values = map[string]string{}
	}
	return nil
}

func (c *Config) applyEnvironment() {
	overrides := []struct {
		name   string
		target *string
	}{
		{"ENVVARS_FORMAT", &c.Output.Format},
		{"ENVVARS_RULES", &c.Rules},
		{"ENVVARS_NAMING_POLICY", &c.NamingPolicy},
		{"ENVVARS_PROFILE", &c.Profile},
	}
	for _, override := range overrides {
		if value := os.Getenv(override.name); value != "" {
			*override.target = value
		}
	}
}

func (c *Config) applyProfile() error {
	if c.Profile == "" {
		return nil
	}
	overrides, ok := c.Profiles[c.Profile]
	if !ok {
		return fmt.Errorf("profile %q is not defined (available: %v)", c.Profile, c.ProfileNames())
	}
	if overrides == nil {
		return nil
	}

	if len(overrides.Catalogs) > 0 {
		c.Catalogs = overrides.Catalogs
	}
	if len(overrides.KeyRegistries) > 0 {
		c.KeyRegistries = overrides.KeyRegistries
	}
	for context, value := range overrides.Values {
		c.Values[context] = value
	}
	if overrides.Output != nil {
		if overrides.Output.Format != "" {
			c.Output.Format = overrides.Output.Format
		}
		if overrides.Output.SecretName != "" {
			c.Output.SecretName = overrides.Output.SecretName
		}
		if overrides.Output.ConfigMapName != "" {
			c.Output.ConfigMapName = overrides.Output.ConfigMapName
		}
		if overrides.Output.Color != "" {
			c.Output.Color = overrides.Output.Color
		}
	}
	return nil
}

// ProfileNames returns the defined profile names, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in every
// string field.
func (c *Config) expandVariables() {
	vars := map[string]string{"HOME": os.Getenv("HOME")}
	if c.path != "" {
		vars["ENVVARS_CONFIG_DIR"] = filepath.Dir(c.path)
	}

	c.Rules = expandVars(c.Rules, vars)
	c.NamingPolicy = expandVars(c.NamingPolicy, vars)
	for i := range c.Catalogs {
		c.Catalogs[i] = expandVars(c.Catalogs[i], vars)
	}
	for i := range c.KeyRegistries {
		c.KeyRegistries[i] = expandVars(c.KeyRegistries[i], vars)
	}
	for context, value := range c.Values {
		c.Values[context] = expandVars(value, vars)
	}
	c.Output.SecretName = expandVars(c.Output.SecretName, vars)
	c.Output.ConfigMapName = expandVars(c.Output.ConfigMapName, vars)
}

// resolvePaths makes relative file paths relative to dir.
func (c *Config) resolvePaths(dir string) {
	resolve := func(path string) string {
		if path == "" || filepath.IsAbs(path) {
			return path
		}
		return filepath.Join(dir, path)
	}
	c.Rules = resolve(c.Rules)
	c.NamingPolicy = resolve(c.NamingPolicy)
	for i := range c.Catalogs {
		c.Catalogs[i] = resolve(c.Catalogs[i])
	}
	for i := range c.KeyRegistries {
		c.KeyRegistries[i] = resolve(c.KeyRegistries[i])
	}
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// expandVars expands ${VAR} and ${VAR:-default} patterns, checking vars
// before the process environment.
func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Output.Format == "" {
		errs = append(errs, fmt.Errorf("output.format is required"))
	}

	colorModes := []string{ColorAuto, ColorAlways, ColorNever}
	if !contains(colorModes, c.Output.Color) {
		errs = append(errs, fmt.Errorf("output.color must be one of: %v", colorModes))
	}

	for _, context := range sortedKeys(c.Values) {
		if context == "" {
			errs = append(errs, fmt.Errorf("values contains a blank context name"))
		} else if c.Values[context] == "" {
			errs = append(errs, fmt.Errorf("values.%s is blank", context))
		}
	}

	for i, catalog := range c.Catalogs {
		if catalog == "" {
			errs = append(errs, fmt.Errorf("catalogs[%d] is blank", i))
		}
	}
	for i, registry := range c.KeyRegistries {
		if registry == "" {
			errs = append(errs, fmt.Errorf("key_registries[%d] is blank", i))
		}
	}

	if c.Profile != "" {
		if _, ok := c.Profiles[c.Profile]; !ok {
			errs = append(errs, fmt.Errorf("profile %q is not defined", c.Profile))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
