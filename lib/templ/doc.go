// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package templ is the string template engine used to render define
// values and computed qualifiers.
//
// The resolution engine only depends on the [Engine] interface: a pure
// function from (text, lookup) to text that reports an unknown key as a
// [*MissingKeyError]. [Func] adapts a plain function to the interface so
// callers can plug in another grammar.
//
// [Braces] is the default grammar. It replaces {{KEY}} (surrounding
// blanks allowed) with the looked-up value, rendering that value in turn
// so one define can build on another. A key that leads back to itself
// is reported as a cycle. Text that does not form a complete
// placeholder is left untouched.
//
// This package depends on no other envvars packages.
package templ
