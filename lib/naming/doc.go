// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package naming checks variable names against a naming policy.
//
// A [Policy] has three rule groups. Every key must match none of the
// MustNotMatch rules, all of the MustMatch rules, and, when the group
// is non-empty, at least one of the OneOf rules. Rules match the whole
// key. [Policy.Validate] walks keys in sorted order and reports every
// violation at once as a [fault.List], so a document with three bad
// names produces three entries rather than stopping at the first.
//
// Policies are usually loaded from YAML with [LoadPolicy]: a schema
// file names rule ids under variable_filters (none_of, all_of, one_of)
// and lists definition files that supply each id's regex, description
// and usage text. [Cache] loads each schema path once for callers that
// see the same schema from many documents.
package naming
