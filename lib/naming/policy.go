// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package naming

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/bureau-foundation/envvars/lib/fault"
	"github.com/bureau-foundation/envvars/lib/mapdata"
)

// Rule is a named whole-string pattern.
type Rule struct {
	Name        string
	Description string
	Usage       string
	Pattern     *regexp.Regexp
}

// NewRule compiles expression anchored at both ends.
func NewRule(name, expression, description, usage string) (Rule, error) {
	if name == "" {
		return Rule{}, fmt.Errorf("naming rule has no name")
	}
	pattern, err := regexp.Compile(`^(?:` + expression + `)$`)
	if err != nil {
		return Rule{}, fmt.Errorf("naming rule %q: %w", name, err)
	}
	return Rule{Name: name, Description: description, Usage: usage, Pattern: pattern}, nil
}

// Matches reports whether the whole key matches the rule.
func (r Rule) Matches(key string) bool {
	return r.Pattern.MatchString(key)
}

func (r Rule) explain() string {
	text := r.Name
	if r.Description != "" {
		text += " (" + r.Description + ")"
	}
	if r.Usage != "" {
		text += " - " + r.Usage
	}
	return text
}

// Policy is an immutable set of rule groups. The zero Policy accepts
// every key.
type Policy struct {
	MustNotMatch []Rule
	MustMatch    []Rule
	OneOf        []Rule
}

// CheckKey returns the first violation for key, or nil. mustNotMatch
// rules are checked first, then mustMatch, then oneOf.
func (p *Policy) CheckKey(key string) *fault.Error {
	for _, rule := range p.MustNotMatch {
		if rule.Matches(key) {
			return fault.New(fault.NamingViolation, "", "%s must not match %s", key, rule.explain()).WithKey(key)
		}
	}
	for _, rule := range p.MustMatch {
		if !rule.Matches(key) {
			return fault.New(fault.NamingViolation, "", "%s must match %s", key, rule.explain()).WithKey(key)
		}
	}
	if len(p.OneOf) == 0 {
		return nil
	}
	for _, rule := range p.OneOf {
		if rule.Matches(key) {
			return nil
		}
	}
	explanations := make([]string, len(p.OneOf))
	for i, rule := range p.OneOf {
		explanations[i] = rule.explain()
	}
	return fault.New(fault.NamingViolation, "",
		"%s must match one of these, but matches none: %s", key, strings.Join(explanations, "; ")).WithKey(key)
}

// Validate checks every key and returns all violations together, in
// sorted key order. Duplicate keys are checked once.
func (p *Policy) Validate(keys []string) error {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	var violations fault.List
	for i, key := range sorted {
		if i > 0 && sorted[i-1] == key {
			continue
		}
		if violation := p.CheckKey(key); violation != nil {
			violations = append(violations, violation)
		}
	}
	return violations.Err()
}

// ValidateModel checks the union of the model's plain and secret
// definition keys. Reference definitions are not checked.
func (p *Policy) ValidateModel(model *mapdata.Model) error {
	keys := append(model.DefineKeys(), model.SecretKeys()...)
	return p.Validate(keys)
}

// Empty reports whether the policy has no rules.
func (p *Policy) Empty() bool {
	return p == nil || len(p.MustNotMatch)+len(p.MustMatch)+len(p.OneOf) == 0
}
