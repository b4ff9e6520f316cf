// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package keyreg

import (
	"fmt"
	"os"
	"slices"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/envvars/lib/fault"
	"github.com/bureau-foundation/envvars/lib/mapdata"
)

// Registry reports the allowed keys of a context.
type Registry interface {
	// Keys returns the allowed keys for context in any order, and
	// false if the registry does not know the context.
	Keys(context string) ([]string, bool)
}

// MapRegistry is a Registry backed by a map of context to keys.
type MapRegistry map[string][]string

// Keys returns a sorted copy of the context's keys.
func (r MapRegistry) Keys(context string) ([]string, bool) {
	keys, ok := r[context]
	if !ok {
		return nil, false
	}
	sorted := slices.Clone(keys)
	sort.Strings(sorted)
	return sorted, true
}

// Contexts returns the registered contexts, sorted.
func (r MapRegistry) Contexts() []string {
	contexts := make([]string, 0, len(r))
	for context := range r {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)
	return contexts
}

// Aggregate consults registries in order. The first registry that knows
// a context answers for it.
type Aggregate []Registry

// Keys implements Registry.
func (a Aggregate) Keys(context string) ([]string, bool) {
	for _, registry := range a {
		if keys, ok := registry.Keys(context); ok {
			return keys, true
		}
	}
	return nil, false
}

// Parse decodes a YAML registry. name identifies the source in errors.
func Parse(name string, data []byte) (MapRegistry, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing key registry %s: %w", name, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("key registry %s is empty", name)
	}

	registry := make(MapRegistry, len(raw))
	contexts := make([]string, 0, len(raw))
	for context := range raw {
		contexts = append(contexts, context)
	}
	sort.Strings(contexts)

	for _, context := range contexts {
		list, ok := raw[context].([]any)
		if !ok {
			return nil, fault.New(fault.Structural, name+":"+context,
				"context %q must be a list of keys, got %T", context, raw[context]).WithKey(context)
		}
		keys := make([]string, 0, len(list))
		for i, item := range list {
			key, ok := item.(string)
			if !ok || key == "" {
				return nil, fault.New(fault.Structural, name+":"+context,
					"key %d of context %q must be a non-blank string, got %v", i, context, item).WithKey(context)
			}
			keys = append(keys, key)
		}
		registry[context] = keys
	}
	return registry, nil
}

// Load reads a YAML registry file.
func Load(path string) (MapRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading key registry: %w", err)
	}
	return Parse(path, data)
}

// Check verifies every foreign key observed in model. Contexts are
// checked in sorted order and the first unknown context or key fails.
func Check(registry Registry, model *mapdata.Model) error {
	for _, context := range model.ForeignKeyContexts() {
		allowed, ok := registry.Keys(context)
		if !ok {
			return fault.New(fault.UnknownForeignKey, context,
				"no registered keys for context %q", context).WithKey(context)
		}
		for _, key := range model.ForeignKeys(context) {
			if !slices.Contains(allowed, key) {
				return fault.New(fault.UnknownForeignKey, context,
					"context %q is not valid for key %q; is it mistyped or retired?", context, key).WithKey(key)
			}
		}
	}
	return nil
}
