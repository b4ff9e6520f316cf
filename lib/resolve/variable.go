// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"fmt"
	"sort"
)

// Kind records which definition table produced a variable.
type Kind int

const (
	// Plain values come from define.
	Plain Kind = iota
	// Secret values come from defineSecrets.
	Secret
	// Reference values come from defineReferences and name a value held
	// elsewhere.
	Reference
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Secret:
		return "secret"
	case Reference:
		return "reference"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Plain, Secret, Reference:
		return []byte(k.String()), nil
	}
	return nil, fmt.Errorf("invalid variable kind %d", int(k))
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	kind, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseKind converts a kind name back to a Kind.
func ParseKind(name string) (Kind, error) {
	for _, kind := range []Kind{Plain, Secret, Reference} {
		if kind.String() == name {
			return kind, nil
		}
	}
	return 0, fmt.Errorf("unknown variable kind %q (want plain, secret or reference)", name)
}

// Variable is one resolved environment variable.
type Variable struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Kind  Kind   `json:"kind"`
}

// Set is a list of variables sorted by name, one entry per name.
type Set []Variable

// Lookup finds a variable by name.
func (s Set) Lookup(name string) (Variable, bool) {
	i := sort.Search(len(s), func(i int) bool { return s[i].Name >= name })
	if i < len(s) && s[i].Name == name {
		return s[i], true
	}
	return Variable{}, false
}

// Names returns the variable names in order.
func (s Set) Names() []string {
	names := make([]string, len(s))
	for i, variable := range s {
		names[i] = variable.Name
	}
	return names
}

// Filter returns the variables of the given kind.
func (s Set) Filter(kind Kind) Set {
	var filtered Set
	for _, variable := range s {
		if variable.Kind == kind {
			filtered = append(filtered, variable)
		}
	}
	return filtered
}
