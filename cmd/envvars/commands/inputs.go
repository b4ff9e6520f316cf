// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/bureau-foundation/envvars/cmd/envvars/cli"
	"github.com/bureau-foundation/envvars/lib/config"
	"github.com/bureau-foundation/envvars/lib/envvars"
	"github.com/bureau-foundation/envvars/lib/keyreg"
	"github.com/bureau-foundation/envvars/lib/macro"
	"github.com/bureau-foundation/envvars/lib/naming"
	"github.com/bureau-foundation/envvars/lib/output"
	"github.com/bureau-foundation/envvars/lib/selector"
	"github.com/bureau-foundation/envvars/lib/source"
)

// inputFlags are the flags every document-reading command shares.
type inputFlags struct {
	configPath    string
	rules         string
	selects       []string
	catalogs      []string
	namingPolicy  string
	keyRegistries []string
	verbose       bool
}

func (f *inputFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&f.configPath, "config", "", "tool configuration file (default $ENVVARS_CONFIG or ./envvars.yaml)")
	flagSet.StringVar(&f.rules, "rules", "", "rule file describing the context tree (.yaml or .json)")
	flagSet.StringArrayVarP(&f.selects, "select", "s", nil, "selector value as context=value (repeatable)")
	flagSet.StringArrayVar(&f.catalogs, "catalog", nil, "macro catalog file, layered in order (repeatable)")
	flagSet.StringVar(&f.namingPolicy, "naming-policy", "", "naming policy schema file")
	flagSet.StringArrayVar(&f.keyRegistries, "key-registry", nil, "foreign-key registry file (repeatable)")
	flagSet.BoolVarP(&f.verbose, "verbose", "v", false, "log each document and scope at debug level")
}

// outputFlags select and tune the rendering.
type outputFlags struct {
	format        string
	secretName    string
	configMapName string
	color         string
}

func (f *outputFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVarP(&f.format, "format", "f", "",
		fmt.Sprintf("output format: %s (default from config, else env)", strings.Join(output.Formats(), ", ")))
	flagSet.StringVar(&f.secretName, "secret-name", "", "Kubernetes Secret named by k8s secretKeyRef entries")
	flagSet.StringVar(&f.configMapName, "config-map-name", "", "Kubernetes ConfigMap named by k8s configMapKeyRef entries")
	flagSet.StringVar(&f.color, "color", "", "colorize output: auto, always or never")
}

// session is a loaded configuration plus an engine holding every
// document named on the command line.
type session struct {
	config   *config.Config
	engine   *envvars.Engine
	registry keyreg.Registry
	logger   *slog.Logger
}

// openOptions adjusts how a session is assembled.
type openOptions struct {
	// deferKeyCheck leaves the foreign-key registry out of the engine
	// so the caller can report observed keys before checking them.
	deferKeyCheck bool

	// collect keeps going after a document fails and returns every
	// failure instead of stopping at the first.
	collect bool
}

// loadConfig reads the tool configuration and applies flag overrides.
func (f *inputFlags) loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error
	if f.configPath != "" {
		cfg, err = config.LoadFile(f.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if f.rules != "" {
		cfg.Rules = f.rules
	}
	if len(f.catalogs) > 0 {
		cfg.Catalogs = f.catalogs
	}
	if f.namingPolicy != "" {
		cfg.NamingPolicy = f.namingPolicy
	}
	if len(f.keyRegistries) > 0 {
		cfg.KeyRegistries = f.keyRegistries
	}
	for _, selection := range f.selects {
		context, value, ok := strings.Cut(selection, "=")
		if !ok || context == "" || value == "" {
			return nil, cli.Usagef("--select %q: want context=value", selection)
		}
		cfg.Values[context] = value
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// open builds the pipeline and feeds it documents in order. With
// collect set, document failures are returned alongside a usable
// session; otherwise the first failure is returned as the error.
func (f *inputFlags) open(command string, documents []string, options openOptions) (*session, []error, error) {
	if len(documents) == 0 {
		return nil, nil, cli.Usagef("at least one DOCUMENT is required")
	}

	cfg, err := f.loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := cli.NewCommandLogger(f.verbose).With("command", command)

	if cfg.Rules == "" {
		return nil, nil, cli.Usagef("no rule file: pass --rules or set rules in the configuration")
	}
	nodes, err := loadRules(cfg.Rules, cfg.Values)
	if err != nil {
		return nil, nil, err
	}

	catalog, err := macro.Load(cfg.Catalogs...)
	if err != nil {
		return nil, nil, err
	}

	var policy *naming.Policy
	if cfg.NamingPolicy != "" {
		policy, err = naming.LoadPolicy(cfg.NamingPolicy)
		if err != nil {
			return nil, nil, err
		}
	}

	registry, err := loadRegistries(cfg.KeyRegistries)
	if err != nil {
		return nil, nil, err
	}

	engineOptions := envvars.Options{
		Catalog: catalog,
		Policy:  policy,
		Logger:  logger,
	}
	if !options.deferKeyCheck {
		engineOptions.Registry = registry
	}
	engine := envvars.New(nodes, engineOptions)

	cache := source.NewCache(logger)
	var failures []error
	for _, path := range documents {
		err := addDocument(engine, cache, path)
		if err == nil {
			continue
		}
		if !options.collect {
			return nil, nil, err
		}
		failures = append(failures, err)
	}

	return &session{
		config:   cfg,
		engine:   engine,
		registry: registry,
		logger:   logger,
	}, failures, nil
}

func addDocument(engine *envvars.Engine, cache *source.Cache, path string) error {
	document, err := cache.Load(path)
	if err != nil {
		return err
	}
	return engine.AddDocument(document.Path, document.Data)
}

// loadRules parses the rule file in the syntax its extension implies.
func loadRules(path string, values map[string]string) ([]*selector.Node, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var nodes []*selector.Node
	if source.FormatOf(path) == source.JSON {
		nodes, err = selector.ParseRulesJSON(data, values)
	} else {
		nodes, err = selector.ParseRulesYAML(data, values)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return nodes, nil
}

// loadRegistries returns nil when no registry files are configured.
func loadRegistries(paths []string) (keyreg.Registry, error) {
	if len(paths) == 0 {
		return nil, nil
	}
	aggregate := make(keyreg.Aggregate, 0, len(paths))
	for _, path := range paths {
		registry, err := keyreg.Load(path)
		if err != nil {
			return nil, err
		}
		aggregate = append(aggregate, registry)
	}
	return aggregate, nil
}

// renderOptions merges output flags over the configuration.
func (f *outputFlags) renderOptions(cfg *config.Config, w io.Writer) (output.Format, output.Options, error) {
	formatName := cfg.Output.Format
	if f.format != "" {
		formatName = f.format
	}
	format, err := output.ParseFormat(formatName)
	if err != nil {
		return "", output.Options{}, cli.Usagef("%v", err)
	}

	options := output.Options{
		SecretName:    cfg.Output.SecretName,
		ConfigMapName: cfg.Output.ConfigMapName,
	}
	if f.secretName != "" {
		options.SecretName = f.secretName
	}
	if f.configMapName != "" {
		options.ConfigMapName = f.configMapName
	}

	colorMode := cfg.Output.Color
	if f.color != "" {
		colorMode = f.color
	}
	switch colorMode {
	case config.ColorAlways:
		options.Color = true
	case config.ColorNever:
	case config.ColorAuto, "":
		options.Color = isTerminal(w) && !termenv.EnvNoColor()
	default:
		return "", output.Options{}, cli.Usagef("--color %q: want auto, always or never", colorMode)
	}
	return format, options, nil
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	return ok && term.IsTerminal(int(file.Fd()))
}
