// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bureau-foundation/envvars/lib/fault"
)

// MaxDepth is the deepest level at which an inject set may itself
// reference another inject set. A reference from the top-level list
// is at depth zero.
const MaxDepth = 10

// Expansion is the result of expanding an inject list.
type Expansion struct {
	// Lines holds every resulting inject line in source order.
	Lines []string
	// Optional holds the lines that came from "?" entries. They also
	// appear in Lines.
	Optional []string
}

var (
	referencePattern   = regexp.MustCompile(`^([^<>]+)<(.+)>$`)
	placeholderPattern = regexp.MustCompile(`\{\{\$([\^v]?)([0-9]+)\}\}`)
)

// reference is a parsed set reference.
type reference struct {
	name string
	args []string
}

func parseReference(text, path string) (reference, error) {
	match := referencePattern.FindStringSubmatch(text)
	if match == nil {
		return reference{name: text}, nil
	}
	parts := strings.Split(match[2], ",")
	args := make([]string, len(parts))
	for i, part := range parts {
		args[i] = strings.TrimSpace(part)
		if args[i] == "" {
			return reference{}, fault.New(fault.Structural, path,
				"set reference %q has a blank argument at position %d", text, i+1).WithKey(text)
		}
	}
	return reference{name: match[1], args: args}, nil
}

// binder substitutes one reference's arguments and tracks which of them
// were used.
type binder struct {
	args []string
	used []bool
}

func newBinder(args []string) *binder {
	return &binder{args: args, used: make([]bool, len(args))}
}

func (b *binder) bind(text string) string {
	if len(b.args) == 0 || !strings.Contains(text, "{{$") {
		return text
	}
	return placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		index, err := strconv.Atoi(parts[2])
		if err != nil || index < 1 || index > len(b.args) {
			return match
		}
		b.used[index-1] = true
		return shiftCase(b.args[index-1], parts[1])
	})
}

// unused returns a Structural error naming the first argument no
// placeholder consumed.
func (b *binder) unused(ref reference, path string) error {
	for i, used := range b.used {
		if !used {
			return fault.New(fault.Structural, path,
				"set %q was invoked with arguments %v but never uses {{$%d}} (%q)",
				ref.name, ref.args, i+1, ref.args[i]).WithKey(ref.name)
		}
	}
	return nil
}

func shiftCase(arg, marker string) string {
	switch marker {
	case "^":
		return strings.NewReplacer("-", "_", ".", "_").Replace(strings.ToUpper(arg))
	case "v":
		return strings.ReplaceAll(strings.ToLower(arg), "_", "-")
	}
	return arg
}

// ExpandDefine resolves each define-set reference and merges the sets
// in order, later keys replacing earlier ones. path names the document
// location for error messages.
func (c *Catalog) ExpandDefine(refs []string, path string) (map[string]string, error) {
	results := make(map[string]string)
	for _, text := range refs {
		ref, err := parseReference(text, path)
		if err != nil {
			return nil, err
		}
		set, ok := c.rawDefineSets()[ref.name]
		if !ok {
			return nil, fault.New(fault.Unresolved, path,
				"define set %q does not exist; empty sets are allowed but every referenced set must be defined", ref.name).WithKey(ref.name)
		}

		b := newBinder(ref.args)
		// Sorted so that keys which collide after substitution resolve
		// the same way on every run.
		for _, key := range sortedKeys(set) {
			results[b.bind(key)] = b.bind(set[key])
		}
		if err := b.unused(ref, path); err != nil {
			return nil, err
		}
	}
	return results, nil
}

// ExpandInject expands "*name" entries of a top-level inject list. Other
// entries pass through unchanged.
func (c *Catalog) ExpandInject(entries []string, path string) (Expansion, error) {
	var out Expansion
	for _, entry := range entries {
		if name, ok := strings.CutPrefix(entry, "*"); ok {
			if err := c.expandInjectSet(&out, name, 0, path); err != nil {
				return Expansion{}, err
			}
			continue
		}
		out.Lines = append(out.Lines, entry)
	}
	return out, nil
}

func (c *Catalog) expandInjectSet(out *Expansion, text string, depth int, path string) error {
	ref, err := parseReference(text, path)
	if err != nil {
		return err
	}
	set, ok := c.rawInjectSets()[ref.name]
	if !ok {
		return fault.New(fault.Unresolved, path,
			"inject set %q does not exist; empty sets are allowed but every referenced set must be defined", ref.name).WithKey(ref.name)
	}

	b := newBinder(ref.args)
	entries := make([]string, len(set))
	for i, entry := range set {
		entries[i] = b.bind(entry)
	}
	if err := b.unused(ref, path); err != nil {
		return err
	}

	for _, entry := range entries {
		if key, ok := strings.CutPrefix(entry, "?"); ok {
			out.Lines = append(out.Lines, key)
			out.Optional = append(out.Optional, key)
			continue
		}
		if name, ok := strings.CutPrefix(entry, "*"); ok {
			if depth >= MaxDepth {
				return fault.New(fault.RecursionLimit, path,
					"inject set %q references %q beyond the nesting limit of %d", ref.name, entry, MaxDepth).WithKey(name)
			}
			if err := c.expandInjectSet(out, name, depth+1, path); err != nil {
				return err
			}
			continue
		}
		out.Lines = append(out.Lines, entry)
	}
	return nil
}
