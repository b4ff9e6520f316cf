// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package macro

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestNewCatalog_CopiesInput(t *testing.T) {
	injects := map[string][]string{"a": {"X"}}
	defines := map[string]map[string]string{"d": {"K": "V"}}
	catalog := NewCatalog(injects, defines)

	injects["a"][0] = "MUTATED"
	defines["d"]["K"] = "MUTATED"

	entries, _ := catalog.InjectSet("a")
	if entries[0] != "X" {
		t.Errorf("inject set changed through caller's slice: %v", entries)
	}
	set, _ := catalog.DefineSet("d")
	if set["K"] != "V" {
		t.Errorf("define set changed through caller's map: %v", set)
	}

	entries[0] = "ALSO_MUTATED"
	again, _ := catalog.InjectSet("a")
	if again[0] != "X" {
		t.Errorf("inject set changed through returned slice: %v", again)
	}
}

func TestCatalog_With(t *testing.T) {
	base := NewCatalog(map[string][]string{"a": {"A1"}, "b": {"B1"}}, nil)
	layer := NewCatalog(map[string][]string{"b": {"B2"}}, map[string]map[string]string{"d": {}})
	merged := base.With(layer)

	b, _ := merged.InjectSet("b")
	if !reflect.DeepEqual(b, []string{"B2"}) {
		t.Errorf("merged b = %v, want [B2]", b)
	}
	if original, _ := base.InjectSet("b"); original[0] != "B1" {
		t.Errorf("With mutated the receiver: b = %v", original)
	}
	if !reflect.DeepEqual(merged.InjectSetNames(), []string{"a", "b"}) {
		t.Errorf("InjectSetNames = %v", merged.InjectSetNames())
	}
	if !reflect.DeepEqual(merged.DefineSetNames(), []string{"d"}) {
		t.Errorf("DefineSetNames = %v", merged.DefineSetNames())
	}
}

func TestParse(t *testing.T) {
	catalog, err := Parse([]byte(`
inject_sets:
  database:
    - DB_HOST
    - "?DB_PASSWORD"
define_sets:
  defaults:
    DB_PORT: "5432"
    LOG_LEVEL: info
`))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	entries, ok := catalog.InjectSet("database")
	if !ok || !reflect.DeepEqual(entries, []string{"DB_HOST", "?DB_PASSWORD"}) {
		t.Errorf("database = %v, %v", entries, ok)
	}
	set, ok := catalog.DefineSet("defaults")
	if !ok || set["DB_PORT"] != "5432" || set["LOG_LEVEL"] != "info" {
		t.Errorf("defaults = %v, %v", set, ok)
	}
}

func TestParse_RejectsBlankEntries(t *testing.T) {
	_, err := Parse([]byte(`
inject_sets:
  broken: ["A", "", "*"]
`))
	if err == nil {
		t.Fatal("Parse accepted blank inject entries")
	}
	if !strings.Contains(err.Error(), "broken[1]") || !strings.Contains(err.Error(), "broken[2]") {
		t.Errorf("error should name both blank entries, got: %v", err)
	}
}

func TestLoad_Layers(t *testing.T) {
	directory := t.TempDir()
	first := filepath.Join(directory, "first.yaml")
	second := filepath.Join(directory, "second.yaml")
	if err := os.WriteFile(first, []byte("inject_sets:\n  s: [A]\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(second, []byte("inject_sets:\n  s: [B]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	catalog, err := Load(first, second)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if entries, _ := catalog.InjectSet("s"); !reflect.DeepEqual(entries, []string{"B"}) {
		t.Errorf("s = %v, want [B]", entries)
	}

	if _, err := Load(filepath.Join(directory, "absent.yaml")); err == nil {
		t.Error("Load of a missing file succeeded")
	}
}
