// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fault defines the error kinds produced while walking a
// configuration document and resolving it into output variables.
//
// Every domain failure is an [*Error] carrying a [Kind], the document
// path where it happened, and the offending key when there is one.
// Callers branch on the kind with [Is] rather than matching message
// text. Two checks aggregate instead of failing fast: orphaned remaps
// and naming-policy violations. Those return a [List], which can be
// recovered from a wrapped error with [AsList].
//
// Template failures carry a [TemplateReason] that separates a missing
// placeholder from any other rendering failure.
//
// This package depends on no other envvars packages.
package fault
