// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package source reads configuration documents from disk.
//
// Documents are YAML or JSON. JSON files (".json", ".jsonc") may carry
// comments and trailing commas; everything else is decoded as YAML.
// Either way the result is the generic map the document walker
// consumes.
//
// [Cache] memoizes reads for processes that resolve the same files
// repeatedly. Each path is read and parsed at most once even under
// concurrent callers, and two paths whose contents share a BLAKE3
// digest share one parsed document. Cached documents are read-only.
//
// This package depends on no other envvars packages.
package source
