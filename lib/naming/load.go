// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package naming

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Definitions maps rule ids to compiled rules.
type Definitions map[string]Rule

type definitionsFile struct {
	VariableFilters map[string]struct {
		Name        string `yaml:"name"`
		Regex       string `yaml:"regex"`
		Description string `yaml:"description"`
		Usage       string `yaml:"usage"`
	} `yaml:"variable_filters"`
}

type schemaFile struct {
	Definitions     []string `yaml:"definitions"`
	VariableFilters struct {
		AllOf  []string `yaml:"all_of"`
		OneOf  []string `yaml:"one_of"`
		NoneOf []string `yaml:"none_of"`
	} `yaml:"variable_filters"`
}

// ParseDefinitions decodes a definitions document. A rule's name
// defaults to its id.
func ParseDefinitions(data []byte) (Definitions, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing naming definitions: %w", err)
	}

	definitions := make(Definitions, len(file.VariableFilters))
	var errs []error
	ids := make([]string, 0, len(file.VariableFilters))
	for id := range file.VariableFilters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		filter := file.VariableFilters[id]
		name := filter.Name
		if name == "" {
			name = id
		}
		if filter.Regex == "" {
			errs = append(errs, fmt.Errorf("variable filter %q has no regex", id))
			continue
		}
		rule, err := NewRule(name, filter.Regex, filter.Description, filter.Usage)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		definitions[id] = rule
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return definitions, nil
}

// ParsePolicy decodes a schema document against already loaded
// definitions. The schema's own definitions list is ignored.
func ParsePolicy(schema []byte, definitions Definitions) (*Policy, error) {
	var file schemaFile
	if err := yaml.Unmarshal(schema, &file); err != nil {
		return nil, fmt.Errorf("parsing naming schema: %w", err)
	}
	return file.build(definitions)
}

// LoadPolicy reads a schema file and the definition files it lists.
// Relative definition paths are resolved against the schema's
// directory; later definition files replace same-named ids.
func LoadPolicy(schemaPath string) (*Policy, error) {
	data, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("reading naming schema: %w", err)
	}
	var file schemaFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing naming schema %s: %w", schemaPath, err)
	}

	definitions := make(Definitions)
	for _, definitionPath := range file.Definitions {
		if !filepath.IsAbs(definitionPath) {
			definitionPath = filepath.Join(filepath.Dir(schemaPath), definitionPath)
		}
		definitionData, err := os.ReadFile(definitionPath)
		if err != nil {
			return nil, fmt.Errorf("reading naming definitions: %w", err)
		}
		loaded, err := ParseDefinitions(definitionData)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", definitionPath, err)
		}
		for id, rule := range loaded {
			definitions[id] = rule
		}
	}

	policy, err := file.build(definitions)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", schemaPath, err)
	}
	return policy, nil
}

func (f *schemaFile) build(definitions Definitions) (*Policy, error) {
	var errs []error
	lookup := func(group string, ids []string) []Rule {
		rules := make([]Rule, 0, len(ids))
		for _, id := range ids {
			rule, ok := definitions[id]
			if !ok {
				errs = append(errs, fmt.Errorf("%s: no definition for variable filter %q", group, id))
				continue
			}
			rules = append(rules, rule)
		}
		return rules
	}

	policy := &Policy{
		MustNotMatch: lookup("none_of", f.VariableFilters.NoneOf),
		MustMatch:    lookup("all_of", f.VariableFilters.AllOf),
		OneOf:        lookup("one_of", f.VariableFilters.OneOf),
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return policy, nil
}
