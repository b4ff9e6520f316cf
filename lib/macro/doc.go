// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package macro expands named, reusable sets referenced from inject and
// declare sections.
//
// A [Catalog] holds two independent tables. Inject sets are ordered
// lists of inject lines; define sets are key/value maps. A reference is
// either a bare set name or a parameterized name<arg1,arg2>. In a
// parameterized reference every argument replaces its positional
// placeholder throughout the set:
//
//	{{$1}}   the argument as given
//	{{$^1}}  upper-cased, with '-' and '.' mapped to '_'
//	{{$v1}}  lower-cased, with '_' mapped to '-'
//
// Each argument must appear at least once in the set, in any of the
// three forms.
//
// [Catalog.ExpandInject] follows "*name" entries recursively, marks "?"
// entries inside an expanded set as optional, and refuses to nest more
// than [MaxDepth] levels. [Catalog.ExpandDefine] merges the referenced
// define sets in order.
//
// Catalogs are immutable once built. [Parse] and [Load] read the YAML
// form (inject_sets and define_sets), and [Catalog.With] layers one
// catalog over another without touching either.
package macro
