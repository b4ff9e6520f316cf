// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package fault

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a resolution failure.
type Kind string

const (
	// Structural indicates a value has the wrong shape: a section that
	// should be a list is a map, a key is blank or quoted, an entry is
	// null.
	Structural Kind = "StructuralError"
	// MissingRequired indicates a required context, selector, or
	// default sentinel is absent.
	MissingRequired Kind = "MissingRequiredElement"
	// Forbidden indicates a section or sentinel is present where the
	// node's policy disallows it.
	Forbidden Kind = "ForbiddenElement"
	// Unresolved indicates an inject target, remap target, or macro set
	// could not be found.
	Unresolved Kind = "UnresolvedReference"
	// OrphanedRemap indicates a remap that no inject consumed. Always
	// reported in a batch.
	OrphanedRemap Kind = "OrphanedRemap"
	// RecursionLimit indicates inject-set expansion nested too deeply.
	RecursionLimit Kind = "RecursionLimitExceeded"
	// NamingViolation indicates a defined key broke the naming policy.
	// Always reported in a batch.
	NamingViolation Kind = "NamingPolicyViolation"
	// Template indicates the template engine failed on a qualifier or
	// value. See [TemplateReason].
	Template Kind = "TemplateError"
	// UnknownForeignKey indicates a key observed at a context level is
	// not in the foreign-key registry for that context.
	UnknownForeignKey Kind = "UnknownForeignKey"
)

// TemplateReason distinguishes the two template failure modes.
type TemplateReason string

const (
	// MissingPlaceholder means the template named a key the lookup
	// could not supply.
	MissingPlaceholder TemplateReason = "MissingPlaceholder"
	// OtherTemplateFailure covers every other rendering failure.
	OtherTemplateFailure TemplateReason = "Other"
)

// Error is a single resolution failure.
type Error struct {
	Kind Kind
	// Path locates the failure in the document, formatted as
	// "context:selector:section" as far as it is known.
	Path string
	// Key is the offending variable, set, or context key, if any.
	Key     string
	Message string
	// Reason is set only for Template errors.
	Reason TemplateReason
	// Err is the underlying cause, if any.
	Err error
}

// New builds an Error with a formatted message.
func New(kind Kind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Message: fmt.Sprintf(format, args...)}
}

// WithKey returns e after setting its Key. It exists so construction
// reads as one expression at call sites.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return "fault <nil>"
	}
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.Reason != "" {
		b.WriteString("(")
		b.WriteString(string(e.Reason))
		b.WriteString(")")
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	if e.Path != "" {
		fmt.Fprintf(&b, " [%s]", e.Path)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// List is a batch of failures reported together.
type List []*Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	messages := make([]string, len(l))
	for i, e := range l {
		messages[i] = e.Error()
	}
	return fmt.Sprintf("%d errors:\n  %s", len(l), strings.Join(messages, "\n  "))
}

// Keys returns the Key of every entry, in order.
func (l List) Keys() []string {
	keys := make([]string, len(l))
	for i, e := range l {
		keys[i] = e.Key
	}
	return keys
}

// Err returns nil for an empty list and the list itself otherwise, so
// that a nil *List never ends up inside a non-nil error interface.
func (l List) Err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// AsList extracts a batched failure from err.
func AsList(err error) (List, bool) {
	if err == nil {
		return nil, false
	}
	var list List
	if errors.As(err, &list) {
		return list, true
	}
	return nil, false
}

// KindOf returns the kind of the first *Error in err's chain, or "" if
// there is none. A List reports the kind of its first entry.
func KindOf(err error) Kind {
	if list, ok := AsList(err); ok && len(list) > 0 {
		return list[0].Kind
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err is, or wraps, a failure of the given kind.
// A List matches when any of its entries matches.
func Is(err error, kind Kind) bool {
	if list, ok := AsList(err); ok {
		for _, e := range list {
			if e.Kind == kind {
				return true
			}
		}
		return false
	}
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}
