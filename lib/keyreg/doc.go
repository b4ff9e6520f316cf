// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package keyreg is the registry of allowed foreign keys.
//
// While walking a document, every key found directly under a context
// (the selector values, such as environment names) is recorded as a
// foreign key for that context. A [Registry] lists the keys each
// context may legitimately carry, and [Check] verifies a model's
// observed keys against it so that a mistyped or retired environment
// name fails loudly instead of being silently ignored.
//
// [MapRegistry] is the in-memory form; [Load] and [Parse] read it from
// YAML (a map from context name to a list of keys). [Aggregate]
// consults several registries in order.
package keyreg
