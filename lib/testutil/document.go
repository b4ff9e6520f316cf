// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package testutil

import (
	"testing"

	"gopkg.in/yaml.v3"
)

// Document decodes an inline YAML document.
func Document(t *testing.T, text string) map[string]any {
	t.Helper()
	var document map[string]any
	if err := yaml.Unmarshal([]byte(text), &document); err != nil {
		t.Fatalf("decoding test document: %v", err)
	}
	if document == nil {
		document = map[string]any{}
	}
	return document
}
