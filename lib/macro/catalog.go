// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"maps"
	"slices"
	"sort"
)

// Catalog is an immutable table of inject sets and define sets. A nil
// *Catalog behaves as an empty one.
type Catalog struct {
	injectSets map[string][]string
	defineSets map[string]map[string]string
}

// NewCatalog builds a catalog from copies of the given tables.
func NewCatalog(injectSets map[string][]string, defineSets map[string]map[string]string) *Catalog {
	catalog := &Catalog{
		injectSets: make(map[string][]string, len(injectSets)),
		defineSets: make(map[string]map[string]string, len(defineSets)),
	}
	for name, entries := range injectSets {
		catalog.injectSets[name] = slices.Clone(entries)
	}
	for name, set := range defineSets {
		catalog.defineSets[name] = maps.Clone(set)
		if catalog.defineSets[name] == nil {
			catalog.defineSets[name] = map[string]string{}
		}
	}
	return catalog
}

// With returns a new catalog holding the sets of c and other. Sets in
// other replace same-named sets in c.
func (c *Catalog) With(other *Catalog) *Catalog {
	merged := NewCatalog(c.rawInjectSets(), c.rawDefineSets())
	for name, entries := range other.rawInjectSets() {
		merged.injectSets[name] = slices.Clone(entries)
	}
	for name, set := range other.rawDefineSets() {
		merged.defineSets[name] = maps.Clone(set)
	}
	return merged
}

// InjectSet returns a copy of the named inject set.
func (c *Catalog) InjectSet(name string) ([]string, bool) {
	entries, ok := c.rawInjectSets()[name]
	return slices.Clone(entries), ok
}

// DefineSet returns a copy of the named define set.
func (c *Catalog) DefineSet(name string) (map[string]string, bool) {
	set, ok := c.rawDefineSets()[name]
	return maps.Clone(set), ok
}

// InjectSetNames returns the inject set names in sorted order.
func (c *Catalog) InjectSetNames() []string {
	return sortedKeys(c.rawInjectSets())
}

// DefineSetNames returns the define set names in sorted order.
func (c *Catalog) DefineSetNames() []string {
	return sortedKeys(c.rawDefineSets())
}

func (c *Catalog) rawInjectSets() map[string][]string {
	if c == nil {
		return nil
	}
	return c.injectSets
}

func (c *Catalog) rawDefineSets() map[string]map[string]string {
	if c == nil {
		return nil
	}
	return c.defineSets
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
