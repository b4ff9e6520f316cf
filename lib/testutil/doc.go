// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package testutil provides shared test helpers for envvars packages.
//
// [WriteFile] writes a fixture file under a test's temporary directory
// and returns its path. [Document] decodes an inline YAML document into
// the map shape the walker consumes, so tests can state their input
// documents as readable YAML rather than nested map literals.
//
// All helpers call t.Fatalf on failure rather than returning errors,
// since test setup failures are not recoverable.
//
// This package has no envvars-internal dependencies.
package testutil
