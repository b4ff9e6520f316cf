// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// catalogFile is the YAML form of a catalog.
type catalogFile struct {
	InjectSets map[string][]string          `yaml:"inject_sets"`
	DefineSets map[string]map[string]string `yaml:"define_sets"`
}

// Parse decodes a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing macro catalog: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return NewCatalog(file.InjectSets, file.DefineSets), nil
}

// Load reads and layers catalog files in order. A set in a later file
// replaces a same-named set from an earlier one.
func Load(paths ...string) (*Catalog, error) {
	catalog := NewCatalog(nil, nil)
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading macro catalog: %w", err)
		}
		layer, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		catalog = catalog.With(layer)
	}
	return catalog, nil
}

func (f *catalogFile) validate() error {
	var errs []error
	for _, name := range sortedKeys(f.InjectSets) {
		if name == "" {
			errs = append(errs, fmt.Errorf("inject_sets: blank set name"))
		}
		for i, entry := range f.InjectSets[name] {
			if entry == "" || entry == "*" || entry == "?" {
				errs = append(errs, fmt.Errorf("inject_sets.%s[%d]: blank entry", name, i))
			}
		}
	}
	for _, name := range sortedKeys(f.DefineSets) {
		if name == "" {
			errs = append(errs, fmt.Errorf("define_sets: blank set name"))
		}
		for key := range f.DefineSets[name] {
			if key == "" {
				errs = append(errs, fmt.Errorf("define_sets.%s: blank key", name))
			}
		}
	}
	return errors.Join(errs...)
}
