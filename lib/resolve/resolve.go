// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"log/slog"
	"sort"

	"github.com/bureau-foundation/envvars/lib/fault"
	"github.com/bureau-foundation/envvars/lib/mapdata"
	"github.com/bureau-foundation/envvars/lib/templ"
)

// Options configures a Resolver.
type Options struct {
	// Templater renders qualifiers and values. Nil means templ.Default().
	Templater templ.Engine

	// Logger receives one debug record per emitted variable. Nil
	// discards.
	Logger *slog.Logger
}

// Resolver runs one resolution pass over a model.
type Resolver struct {
	model     *mapdata.Model
	templater templ.Engine
	logger    *slog.Logger
}

// New creates a Resolver for model.
func New(model *mapdata.Model, options Options) *Resolver {
	templater := options.Templater
	if templater == nil {
		templater = templ.Default()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{model: model, templater: templater, logger: logger}
}

// Resolve finalizes the model and returns the resolved variables. A
// model can only be resolved once.
func (r *Resolver) Resolve() (Set, error) {
	if err := r.model.Finalize(); err != nil {
		return nil, err
	}

	consumed := make(map[string]bool)
	var result Set
	for _, inject := range r.model.Injects() {
		qualifier := inject.Qualifier
		if remap, ok := r.model.Remap(inject.Key); ok {
			qualifier = remap
			consumed[inject.Key] = true
		}

		target, err := renderTarget(r.model, r.templater, inject.Key, qualifier)
		if err != nil {
			return nil, err
		}
		variable, found, err := lookup(r.model, r.templater, inject.Key, target)
		if err != nil {
			return nil, err
		}
		if !found {
			if r.model.Skipped(inject.Key) {
				r.logger.Debug("skipping undefined injection", "key", inject.Key, "target", target)
				continue
			}
			return nil, unresolved(inject.Key, target)
		}
		r.logger.Debug("resolved variable", "key", variable.Name, "kind", variable.Kind.String())
		result = append(result, variable)
	}

	var orphans fault.List
	for _, remap := range r.model.Remaps() {
		if !consumed[remap.Key] {
			orphans = append(orphans, fault.New(fault.OrphanedRemap, "remap",
				"remap %s from %s has no matching inject", remap.Key, remap.Qualifier).WithKey(remap.Key))
		}
	}
	if err := orphans.Err(); err != nil {
		return nil, err
	}

	// Injects come back sorted, so result already is.
	return result, nil
}

// renderTarget returns the define name an inject of key reads: the
// rendered qualifier, or the key itself when the qualifier is blank.
func renderTarget(model *mapdata.Model, templater templ.Engine, key, qualifier string) (string, error) {
	if qualifier == "" {
		return key, nil
	}
	rendered, err := templater.Render(qualifier, templ.Lookup(model.Define))
	if err != nil {
		return "", templateFault(key, qualifier, err)
	}
	return rendered, nil
}

// lookup reads the define named target and renders it as variable key.
func lookup(model *mapdata.Model, templater templ.Engine, key, target string) (Variable, bool, error) {
	defines := templ.Lookup(model.Define)

	tables := []struct {
		kind Kind
		get  func(string) (string, bool)
	}{
		{Plain, model.Define},
		{Secret, model.DefineSecret},
		{Reference, model.DefineReference},
	}
	for _, table := range tables {
		raw, ok := table.get(target)
		if !ok {
			continue
		}
		value, err := templater.Render(raw, defines)
		if err != nil {
			return Variable{}, false, templateFault(key, raw, err)
		}
		return Variable{Name: key, Value: value, Kind: table.kind}, true, nil
	}
	return Variable{}, false, nil
}

// unresolved names the rendered target, not the qualifier template, so
// the message shows the define that was actually missing.
func unresolved(key, target string) *fault.Error {
	if target == key {
		return fault.New(fault.Unresolved, "inject", "no definition found for %s", key).WithKey(key)
	}
	return fault.New(fault.Unresolved, "inject", "no definition found for %s from %s", key, target).WithKey(key)
}

func templateFault(key, text string, err error) *fault.Error {
	if missing, ok := templ.AsMissingKey(err); ok {
		e := fault.New(fault.Template, "template", "value is missing for template: {{%s}}", missing.Key).WithKey(key)
		e.Reason = fault.MissingPlaceholder
		e.Err = err
		return e
	}
	e := fault.New(fault.Template, "template", "rendering %q", text).WithKey(key)
	e.Reason = fault.OtherTemplateFailure
	e.Err = err
	return e
}

// sortSet orders variables by name.
func sortSet(set Set) {
	sort.Slice(set, func(i, j int) bool { return set[i].Name < set[j].Name })
}
