// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mapdata

import (
	"maps"
	"sort"
	"strings"

	"github.com/bureau-foundation/envvars/lib/fault"
)

// Entry is an inject or remap request. Qualifier is empty for an
// inject that reads its own key.
type Entry struct {
	Key       string
	Qualifier string
}

// Model accumulates the definitions and requests of one or more
// documents. It is not safe for concurrent mutation.
type Model struct {
	defines     map[string]string
	secrets     map[string]string
	references  map[string]string
	injects     map[string]string
	remaps      map[string]string
	skip        map[string]struct{}
	foreignKeys map[string]map[string]struct{}
	finalized   bool
}

// NewModel returns an empty model.
func NewModel() *Model {
	return &Model{
		defines:     make(map[string]string),
		secrets:     make(map[string]string),
		references:  make(map[string]string),
		injects:     make(map[string]string),
		remaps:      make(map[string]string),
		skip:        make(map[string]struct{}),
		foreignKeys: make(map[string]map[string]struct{}),
	}
}

// ValidateKey enforces the key invariant: non-empty, no double quote.
func ValidateKey(key string) error {
	if key == "" {
		return fault.New(fault.Structural, "", "blank key is not allowed")
	}
	if strings.Contains(key, `"`) {
		return fault.New(fault.Structural, "", "key %s contains a double quote", key).WithKey(key)
	}
	return nil
}

// PutDefine records a plain definition.
func (m *Model) PutDefine(key, value string) error {
	return put(m.defines, key, value)
}

// PutDefineSecret records a secret definition.
func (m *Model) PutDefineSecret(key, value string) error {
	return put(m.secrets, key, value)
}

// PutDefineReference records a reference definition.
func (m *Model) PutDefineReference(key, value string) error {
	return put(m.references, key, value)
}

// PutInject records an inject request. An empty qualifier means the
// inject reads its own key.
func (m *Model) PutInject(key, qualifier string) error {
	return put(m.injects, key, qualifier)
}

// PutRemap records a qualifier override for an inject.
func (m *Model) PutRemap(key, qualifier string) error {
	if qualifier == "" {
		return fault.New(fault.Structural, "", "remap %s has a blank qualifier", key).WithKey(key)
	}
	return put(m.remaps, key, qualifier)
}

// PutSkip marks an inject key as optional.
func (m *Model) PutSkip(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.skip[key] = struct{}{}
	return nil
}

// PutForeignKeys adds observed keys for a context.
func (m *Model) PutForeignKeys(context string, keys ...string) {
	set, ok := m.foreignKeys[context]
	if !ok {
		set = make(map[string]struct{}, len(keys))
		m.foreignKeys[context] = set
	}
	for _, key := range keys {
		set[key] = struct{}{}
	}
}

func put(table map[string]string, key, value string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	table[key] = value
	return nil
}

// Merge layers other over m. Definitions, injects, remaps and skips in
// other replace same-keyed entries in m; foreign-key sets are unioned.
func (m *Model) Merge(other *Model) {
	if other == nil {
		return
	}
	maps.Copy(m.defines, other.defines)
	maps.Copy(m.secrets, other.secrets)
	maps.Copy(m.references, other.references)
	maps.Copy(m.injects, other.injects)
	maps.Copy(m.remaps, other.remaps)
	maps.Copy(m.skip, other.skip)
	for context, keys := range other.foreignKeys {
		for key := range keys {
			m.PutForeignKeys(context, key)
		}
	}
}

// Define returns a plain definition.
func (m *Model) Define(key string) (string, bool) {
	value, ok := m.defines[key]
	return value, ok
}

// DefineSecret returns a secret definition.
func (m *Model) DefineSecret(key string) (string, bool) {
	value, ok := m.secrets[key]
	return value, ok
}

// DefineReference returns a reference definition.
func (m *Model) DefineReference(key string) (string, bool) {
	value, ok := m.references[key]
	return value, ok
}

// DefineKeys returns the plain definition keys, sorted.
func (m *Model) DefineKeys() []string { return sortedKeys(m.defines) }

// SecretKeys returns the secret definition keys, sorted.
func (m *Model) SecretKeys() []string { return sortedKeys(m.secrets) }

// ReferenceKeys returns the reference definition keys, sorted.
func (m *Model) ReferenceKeys() []string { return sortedKeys(m.references) }

// Injects returns the inject requests ordered by key.
func (m *Model) Injects() []Entry { return entries(m.injects) }

// Remaps returns the remap requests ordered by key.
func (m *Model) Remaps() []Entry { return entries(m.remaps) }

// Remap returns the remap qualifier for key.
func (m *Model) Remap(key string) (string, bool) {
	qualifier, ok := m.remaps[key]
	return qualifier, ok
}

// Skipped reports whether key is in the skip set.
func (m *Model) Skipped(key string) bool {
	_, ok := m.skip[key]
	return ok
}

// SkipKeys returns the skip set, sorted.
func (m *Model) SkipKeys() []string { return sortedKeys(m.skip) }

// ForeignKeyContexts returns the contexts with observed keys, sorted.
func (m *Model) ForeignKeyContexts() []string { return sortedKeys(m.foreignKeys) }

// ForeignKeys returns the keys observed for context, sorted.
func (m *Model) ForeignKeys(context string) []string { return sortedKeys(m.foreignKeys[context]) }

// ForeignKeysFor returns the keys observed for context. When required
// is set, a context that was never observed is an error.
func (m *Model) ForeignKeysFor(context string, required bool) ([]string, error) {
	keys, ok := m.foreignKeys[context]
	if !ok && required {
		return nil, fault.New(fault.MissingRequired, context,
			"foreign keys for context %q are required but none were observed", context).WithKey(context)
	}
	return sortedKeys(keys), nil
}

// Finalize marks the model as consumed by a resolution pass. It fails
// if the model was already finalized.
func (m *Model) Finalize() error {
	if m.finalized {
		return fault.New(fault.Structural, "", "model has already been resolved; rebuild it before resolving again")
	}
	m.finalized = true
	return nil
}

// Finalized reports whether Finalize has been called.
func (m *Model) Finalized() bool { return m.finalized }

func entries(table map[string]string) []Entry {
	keys := sortedKeys(table)
	result := make([]Entry, len(keys))
	for i, key := range keys {
		result[i] = Entry{Key: key, Qualifier: table[key]}
	}
	return result
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
