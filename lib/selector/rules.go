// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/envvars/lib/fault"
)

// ruleField lists the accepted spellings of one rule field. The first
// entry is the canonical long name.
type ruleField []string

var (
	fieldContext          = ruleField{"context", "c"}
	fieldContextRequired  = ruleField{"contextRequired", "cr"}
	fieldSelectorRequired = ruleField{"selectorRequired", "sr", "valueRequired", "vr"}
	fieldSentinel         = ruleField{"defaultSelectorValue", "dvs", "dsv"}
	fieldDefaultPolicy    = ruleField{"defaultProcessing", "dp"}
	fieldSections         = ruleField{"nodeSections", "ns"}
	fieldShape            = ruleField{"shape", "sh"}
	fieldChildren         = ruleField{"subs"}

	allFields = []ruleField{
		fieldContext, fieldContextRequired, fieldSelectorRequired, fieldSentinel,
		fieldDefaultPolicy, fieldSections, fieldShape, fieldChildren,
	}
)

// ParseRulesJSON parses a JSON rule list. Comments and trailing commas
// are accepted.
func ParseRulesJSON(data []byte, values map[string]string) ([]*Node, error) {
	var rules []any
	if err := json.Unmarshal(jsonc.ToJSON(data), &rules); err != nil {
		return nil, fmt.Errorf("parsing rule syntax: %w", err)
	}
	return ParseRules(rules, values)
}

// ParseRulesYAML parses a YAML rule list.
func ParseRulesYAML(data []byte, values map[string]string) ([]*Node, error) {
	var rules []any
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parsing rule syntax: %w", err)
	}
	return ParseRules(rules, values)
}

// ParseRules builds a node list from decoded rule objects. values maps
// each context name to its selected value.
func ParseRules(rules []any, values map[string]string) ([]*Node, error) {
	nodes := make([]*Node, 0, len(rules))
	for i, raw := range rules {
		node, err := parseRule(raw, values, "rule["+strconv.Itoa(i)+"]")
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

func parseRule(raw any, values map[string]string, path string) (*Node, error) {
	rule, ok := raw.(map[string]any)
	if !ok {
		return nil, fault.New(fault.Structural, path, "rule must be an object, got %T", raw)
	}
	if err := checkRuleFields(rule, path); err != nil {
		return nil, err
	}

	context, err := stringField(rule, fieldContext, "", path)
	if err != nil {
		return nil, err
	}
	if context == "" {
		return nil, fault.New(fault.MissingRequired, path, "rule has no %q", fieldContext[0])
	}
	path = path + "(" + context + ")"

	selectorValue, ok := values[context]
	if !ok || selectorValue == "" {
		return nil, fault.New(fault.MissingRequired, path,
			"no selector value supplied for context %q", context).WithKey(context)
	}

	config := NodeConfig{Context: context, Selector: selectorValue}
	if config.ContextRequired, err = boolField(rule, fieldContextRequired, true, path); err != nil {
		return nil, err
	}
	if config.SelectorRequired, err = boolField(rule, fieldSelectorRequired, true, path); err != nil {
		return nil, err
	}
	if config.Sentinel, err = stringField(rule, fieldSentinel, DefaultSentinel, path); err != nil {
		return nil, err
	}

	policyText, err := stringField(rule, fieldDefaultPolicy, Supported.String(), path)
	if err != nil {
		return nil, err
	}
	if config.DefaultPolicy, err = ParseDefaultPolicy(policyText); err != nil {
		return nil, &fault.Error{Kind: fault.Structural, Path: path, Message: "invalid " + fieldDefaultPolicy[0], Err: err}
	}

	if config.Sections, err = sectionsField(rule, path); err != nil {
		return nil, err
	}

	shapeText, err := stringField(rule, fieldShape, "", path)
	if err != nil {
		return nil, err
	}
	if config.Shape, err = ParseShape(shapeText); err != nil {
		return nil, &fault.Error{Kind: fault.Structural, Path: path, Message: "invalid " + fieldShape[0], Err: err}
	}

	if rawChildren, ok := lookupField(rule, fieldChildren); ok && rawChildren != nil {
		list, ok := rawChildren.([]any)
		if !ok {
			return nil, fault.New(fault.Structural, path, "%q must be a list, got %T", fieldChildren[0], rawChildren)
		}
		for i, rawChild := range list {
			child, err := parseRule(rawChild, values, path+".subs["+strconv.Itoa(i)+"]")
			if err != nil {
				return nil, err
			}
			config.Children = append(config.Children, child)
		}
	}

	return NewNode(config)
}

// checkRuleFields rejects unknown fields and fields given under more than
// one alias.
func checkRuleFields(rule map[string]any, path string) error {
	names := make([]string, 0, len(rule))
	for name := range rule {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := make(map[string]string)
	for _, name := range names {
		field := findField(name)
		if field == nil {
			return fault.New(fault.Structural, path, "unknown rule field %q", name).WithKey(name)
		}
		if previous, ok := seen[field[0]]; ok {
			return fault.New(fault.Structural, path,
				"rule field %q given twice (as %q and %q)", field[0], previous, name).WithKey(name)
		}
		seen[field[0]] = name
	}
	return nil
}

func findField(name string) ruleField {
	for _, field := range allFields {
		for _, alias := range field {
			if alias == name {
				return field
			}
		}
	}
	return nil
}

func lookupField(rule map[string]any, field ruleField) (any, bool) {
	for _, alias := range field {
		if value, ok := rule[alias]; ok {
			return value, true
		}
	}
	return nil, false
}

func stringField(rule map[string]any, field ruleField, fallback, path string) (string, error) {
	raw, ok := lookupField(rule, field)
	if !ok || raw == nil {
		return fallback, nil
	}
	text, ok := raw.(string)
	if !ok {
		return "", fault.New(fault.Structural, path, "%q must be a string, got %T", field[0], raw)
	}
	return text, nil
}

func boolField(rule map[string]any, field ruleField, fallback bool, path string) (bool, error) {
	raw, ok := lookupField(rule, field)
	if !ok || raw == nil {
		return fallback, nil
	}
	switch value := raw.(type) {
	case bool:
		return value, nil
	case string:
		switch strings.ToLower(value) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fault.New(fault.Structural, path, "%q must be true or false, got %v", field[0], raw)
}

func sectionsField(rule map[string]any, path string) (Sections, error) {
	raw, ok := lookupField(rule, fieldSections)
	if !ok || raw == nil {
		return NoSecrets, nil
	}
	switch value := raw.(type) {
	case string:
		set, err := ParseSections(value)
		if err != nil {
			return 0, &fault.Error{Kind: fault.Structural, Path: path, Message: "invalid " + fieldSections[0], Err: err}
		}
		return set, nil
	case []any:
		names := make([]string, len(value))
		for i, item := range value {
			name, ok := item.(string)
			if !ok {
				return 0, fault.New(fault.Structural, path, "%q entries must be strings, got %T", fieldSections[0], item)
			}
			names[i] = name
		}
		set, err := ParseSectionList(names)
		if err != nil {
			return 0, &fault.Error{Kind: fault.Structural, Path: path, Message: "invalid " + fieldSections[0], Err: err}
		}
		return set, nil
	}
	return 0, fault.New(fault.Structural, path, "%q must be a preset name or a list of sections, got %T", fieldSections[0], raw)
}
