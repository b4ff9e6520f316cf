// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envvars

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/bureau-foundation/envvars/lib/fault"
	"github.com/bureau-foundation/envvars/lib/keyreg"
	"github.com/bureau-foundation/envvars/lib/macro"
	"github.com/bureau-foundation/envvars/lib/mapdata"
	"github.com/bureau-foundation/envvars/lib/naming"
	"github.com/bureau-foundation/envvars/lib/resolve"
	"github.com/bureau-foundation/envvars/lib/selector"
	"github.com/bureau-foundation/envvars/lib/templ"
)

// Options holds the collaborators shared by every document.
type Options struct {
	// Catalog supplies inject and define sets. Nil means no macros.
	Catalog *macro.Catalog

	// Policy validates define and secret keys. Nil skips validation.
	// A document naming its own schema is checked against both.
	Policy *naming.Policy

	// Schemas memoizes the naming schemas documents refer to. Nil
	// means a cache private to the engine.
	Schemas *naming.Cache

	// Registry lists allowed foreign keys. Nil skips the check.
	Registry keyreg.Registry

	// Templater renders values. Nil means templ.Default().
	Templater templ.Engine

	Logger *slog.Logger
}

// Engine accumulates documents and resolves them.
type Engine struct {
	nodes    []*selector.Node
	walker   *mapdata.Walker
	options  Options
	logger   *slog.Logger
	model    *mapdata.Model
	sources  []string
	resolved bool
}

// New creates an engine for the given rule tree.
func New(nodes []*selector.Node, options Options) *Engine {
	if options.Templater == nil {
		options.Templater = templ.Default()
	}
	if options.Schemas == nil {
		options.Schemas = naming.NewCache()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{
		nodes:   nodes,
		walker:  mapdata.NewWalker(options.Catalog, logger),
		options: options,
		logger:  logger,
		model:   mapdata.NewModel(),
	}
}

// SchemaKey is the top-level document key naming a naming schema for
// that document's definitions. A relative path is resolved against the
// document's directory.
const SchemaKey = "schema"

// AddDocument walks document and merges it over what has been added so
// far. name identifies the document in errors and is the path relative
// schemas are resolved against. On failure the accumulated model is
// left unchanged.
func (e *Engine) AddDocument(name string, document map[string]any) error {
	if e.resolved {
		return fmt.Errorf("%s: engine has already resolved; create a new one to add documents", name)
	}

	layer, err := e.walker.Walk(e.nodes, document)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	documentPolicy, err := e.documentPolicy(name, document)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if err := validateNames([]*naming.Policy{e.options.Policy, documentPolicy}, layer); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if e.options.Registry != nil {
		if err := keyreg.Check(e.options.Registry, layer); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	e.model.Merge(layer)
	e.sources = append(e.sources, name)
	e.logger.Debug("added document",
		"name", name,
		"defines", len(layer.DefineKeys()),
		"secrets", len(layer.SecretKeys()),
		"injects", len(layer.Injects()),
	)
	return nil
}

// documentPolicy loads the schema named by the document's schema key,
// or returns nil when there is none.
func (e *Engine) documentPolicy(name string, document map[string]any) (*naming.Policy, error) {
	raw, ok := document[SchemaKey]
	if !ok || raw == nil {
		return nil, nil
	}
	schemaPath, ok := raw.(string)
	if !ok || schemaPath == "" {
		return nil, fault.New(fault.Structural, SchemaKey,
			"expected a schema path, got %T", raw)
	}
	if !filepath.IsAbs(schemaPath) {
		schemaPath = filepath.Join(filepath.Dir(name), schemaPath)
	}
	policy, err := e.options.Schemas.Load(schemaPath)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("document naming schema", "name", name, "schema", schemaPath)
	return policy, nil
}

// validateNames checks layer against every non-empty policy and
// reports all violations together.
func validateNames(policies []*naming.Policy, layer *mapdata.Model) error {
	var violations fault.List
	for _, policy := range policies {
		if policy.Empty() {
			continue
		}
		if err := policy.ValidateModel(layer); err != nil {
			list, ok := fault.AsList(err)
			if !ok {
				return err
			}
			violations = append(violations, list...)
		}
	}
	return violations.Err()
}

// Sources returns the names of the documents added so far, in order.
func (e *Engine) Sources() []string {
	return append([]string(nil), e.sources...)
}

// Model returns the accumulated model. Callers must not mutate it.
func (e *Engine) Model() *mapdata.Model {
	return e.model
}

// Resolve runs the resolution pass over the accumulated model. It can
// be called once.
func (e *Engine) Resolve() (resolve.Set, error) {
	e.resolved = true
	return resolve.New(e.model, resolve.Options{
		Templater: e.options.Templater,
		Logger:    e.logger,
	}).Resolve()
}

// Bridge renders every plain and secret define, ignoring injects.
func (e *Engine) Bridge() (resolve.Set, error) {
	return resolve.BridgeData(e.model, e.options.Templater)
}

// Sparse returns a lazy single-key view of the defines.
func (e *Engine) Sparse() *resolve.Sparse {
	return resolve.NewSparse(e.model, e.options.Templater)
}
