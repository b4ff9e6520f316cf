// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"fmt"
	"path/filepath"
	"reflect"
	"sync"
	"testing"

	"github.com/bureau-foundation/envvars/lib/testutil"
)

func TestFormatOf(t *testing.T) {
	tests := map[string]Format{
		"vars.yaml":  YAML,
		"vars.yml":   YAML,
		"vars":       YAML,
		"vars.json":  JSON,
		"vars.JSONC": JSON,
	}
	for path, want := range tests {
		if got := FormatOf(path); got != want {
			t.Errorf("FormatOf(%q) = %s, want %s", path, got, want)
		}
	}
}

func TestParse(t *testing.T) {
	yamlDocument, err := Parse(YAML, []byte("environment:\n  dev:\n    define:\n      A: b\n"))
	if err != nil {
		t.Fatalf("Parse YAML error: %v", err)
	}
	jsonDocument, err := Parse(JSON, []byte(`{
		// comments and trailing commas are allowed
		"environment": {"dev": {"define": {"A": "b",},},},
	}`))
	if err != nil {
		t.Fatalf("Parse JSON error: %v", err)
	}
	if !reflect.DeepEqual(yamlDocument, jsonDocument) {
		t.Errorf("YAML and JSON decode differently:\n%v\n%v", yamlDocument, jsonDocument)
	}

	empty, err := Parse(YAML, nil)
	if err != nil || empty == nil || len(empty) != 0 {
		t.Errorf("Parse(empty) = %v, %v; want empty map", empty, err)
	}

	if _, err := Parse(YAML, []byte("- a\n- b\n")); err == nil {
		t.Error("top-level list accepted")
	}
	if _, err := Parse(JSON, []byte("{")); err == nil {
		t.Error("truncated JSON accepted")
	}
	if _, err := Parse("toml", []byte("")); err == nil {
		t.Error("unknown format accepted")
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteFile(t, dir, "vars.jsonc", `{"a": {"b": "c"}}`)
	document, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if _, ok := document["a"].(map[string]any); !ok {
		t.Errorf("document = %v", document)
	}
	if _, err := ReadFile(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestCache_SharesIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	first := testutil.WriteFile(t, dir, "a.yaml", "x: 1\n")
	second := testutil.WriteFile(t, dir, "b.yaml", "x: 1\n")
	third := testutil.WriteFile(t, dir, "c.yaml", "x: 2\n")

	cache := NewCache(nil)
	a, err := cache.Load(first)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	b, err := cache.Load(second)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	c, err := cache.Load(third)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if a.Digest != b.Digest {
		t.Error("identical files have different digests")
	}
	if a.Digest == c.Digest {
		t.Error("different files share a digest")
	}
	if reflect.ValueOf(a.Data).Pointer() != reflect.ValueOf(b.Data).Pointer() {
		t.Error("identical files were parsed twice")
	}
	if cache.Len() != 2 {
		t.Errorf("Len = %d, want 2", cache.Len())
	}
	if b.Path != second {
		t.Errorf("Path = %q, want %q", b.Path, second)
	}
}

func TestCache_Concurrent(t *testing.T) {
	dir := t.TempDir()
	var paths []string
	for i := range 4 {
		paths = append(paths, testutil.WriteFile(t, dir, fmt.Sprintf("doc%d.yaml", i), fmt.Sprintf("n: %d\n", i)))
	}

	cache := NewCache(nil)
	results := make([][]Document, 16)
	var wg sync.WaitGroup
	for worker := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, path := range paths {
				document, err := cache.Load(path)
				if err != nil {
					t.Errorf("Load(%s) error: %v", path, err)
					return
				}
				results[worker] = append(results[worker], document)
			}
		}()
	}
	wg.Wait()

	for worker := 1; worker < len(results); worker++ {
		for i := range results[worker] {
			if reflect.ValueOf(results[worker][i].Data).Pointer() != reflect.ValueOf(results[0][i].Data).Pointer() {
				t.Errorf("worker %d saw a different parse of %s", worker, paths[i])
			}
		}
	}
	if cache.Len() != len(paths) {
		t.Errorf("Len = %d, want %d", cache.Len(), len(paths))
	}
}

func TestCache_CachesFailures(t *testing.T) {
	dir := t.TempDir()
	cache := NewCache(nil)
	missing := filepath.Join(dir, "late.yaml")
	if _, err := cache.Load(missing); err == nil {
		t.Fatal("missing file accepted")
	}
	testutil.WriteFile(t, dir, "late.yaml", "x: 1\n")
	if _, err := cache.Load(missing); err == nil {
		t.Error("cached failure was retried")
	}
}
