// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package mapdata turns a parsed configuration document into an
// intermediate [Model] of definitions and inject requests.
//
// The [Walker] follows a tree of [selector.Node] values through the
// document. At each node it reads the context map, records the keys it
// finds there as foreign keys, processes the default sentinel according
// to the node's default policy, then processes the selected scope.
// Section contents pass through the [macro.Catalog] before they land in
// the model.
//
// A Model holds three definition tables (plain, secret, reference),
// inject and remap requests keyed by variable name, a skip set, and the
// foreign keys observed per context. Later puts of the same key replace
// earlier ones. [Model.Merge] layers one model over another the same
// way, except that foreign-key sets are unioned.
//
// Key exports:
//
//   - [Model], [NewModel], [Model.Merge]
//   - [Walker], [NewWalker], [Walker.Walk], [Walker.WalkInto]
//   - [Entry] -- an inject or remap request
//
// Depends on lib/selector, lib/macro and lib/fault.
package mapdata
