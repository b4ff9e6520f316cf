// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package templ

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Lookup returns the raw template text for a key.
type Lookup func(key string) (string, bool)

// Engine renders template text.
type Engine interface {
	Render(text string, lookup Lookup) (string, error)
}

// Func adapts an ordinary function to Engine.
type Func func(text string, lookup Lookup) (string, error)

// Render calls f.
func (f Func) Render(text string, lookup Lookup) (string, error) {
	return f(text, lookup)
}

// MissingKeyError reports a placeholder whose key the lookup could not
// supply.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("no value for placeholder %q", e.Key)
}

// AsMissingKey extracts a MissingKeyError from err's chain.
func AsMissingKey(err error) (*MissingKeyError, bool) {
	var missing *MissingKeyError
	if errors.As(err, &missing) {
		return missing, true
	}
	return nil, false
}

// CycleError reports a chain of placeholders that refers back to one of
// its own keys.
type CycleError struct {
	Chain []string
}

func (e *CycleError) Error() string {
	return "template cycle: " + strings.Join(e.Chain, " -> ")
}

// Braces is the default {{KEY}} grammar.
type Braces struct{}

// Default returns the engine used when none is configured.
func Default() Engine {
	return Braces{}
}

var placeholderPattern = regexp.MustCompile(`\{\{\s*([^{}\s]+)\s*\}\}`)

// Render substitutes every placeholder in text.
func (Braces) Render(text string, lookup Lookup) (string, error) {
	r := &renderer{lookup: lookup}
	return r.render(text)
}

type renderer struct {
	lookup Lookup
	// chain holds the keys currently being expanded, outermost first.
	chain []string
}

func (r *renderer) render(text string) (string, error) {
	if !strings.Contains(text, "{{") {
		return text, nil
	}

	var renderErr error
	out := placeholderPattern.ReplaceAllStringFunc(text, func(match string) string {
		if renderErr != nil {
			return match
		}
		key := placeholderPattern.FindStringSubmatch(match)[1]

		for _, active := range r.chain {
			if active == key {
				chain := append(append([]string(nil), r.chain...), key)
				renderErr = &CycleError{Chain: chain}
				return match
			}
		}

		value, ok := r.lookup(key)
		if !ok {
			renderErr = &MissingKeyError{Key: key}
			return match
		}

		r.chain = append(r.chain, key)
		rendered, err := r.render(value)
		r.chain = r.chain[:len(r.chain)-1]
		if err != nil {
			renderErr = err
			return match
		}
		return rendered
	})
	if renderErr != nil {
		return "", renderErr
	}
	return out, nil
}
