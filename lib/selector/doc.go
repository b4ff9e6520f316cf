// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package selector describes how a configuration document is walked.
//
// A [Node] names a context key (for example "environment") and the
// selector chosen within it (for example "staging"). The node's
// [DefaultPolicy] decides what happens to the context's default
// sentinel entry, its [Sections] decide which document sections may
// appear under it, and its [Shape] decides whether a selector scope
// is read as sections or as an implied define block. Child nodes are
// walked inside the selected scope.
//
// Nodes are immutable and validated by [NewNode]. Trees are usually
// built from a rule description with [ParseRules], [ParseRulesJSON] or
// [ParseRulesYAML]; every rule field has a long and a short alias:
//
//	context / c                     required
//	contextRequired / cr            default true
//	selectorRequired / sr           default true (also valueRequired / vr)
//	defaultSelectorValue / dvs      default "default" (also dsv)
//	defaultProcessing / dp          default SUPPORTED
//	nodeSections / ns               default NOSECRETS
//	shape / sh                      default detect
//	subs                            child rules
//
// The selector for each rule is taken from a map of context name to
// selected value supplied by the caller.
package selector
