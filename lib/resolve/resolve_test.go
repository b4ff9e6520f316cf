// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/bureau-foundation/envvars/lib/fault"
	"github.com/bureau-foundation/envvars/lib/mapdata"
	"github.com/bureau-foundation/envvars/lib/templ"
)

// build runs each put against a fresh model, failing the test on error.
func build(t *testing.T, puts ...func(*mapdata.Model) error) *mapdata.Model {
	t.Helper()
	model := mapdata.NewModel()
	for _, put := range puts {
		if err := put(model); err != nil {
			t.Fatalf("building model: %v", err)
		}
	}
	return model
}

func define(key, value string) func(*mapdata.Model) error {
	return func(m *mapdata.Model) error { return m.PutDefine(key, value) }
}

func secret(key, value string) func(*mapdata.Model) error {
	return func(m *mapdata.Model) error { return m.PutDefineSecret(key, value) }
}

func reference(key, value string) func(*mapdata.Model) error {
	return func(m *mapdata.Model) error { return m.PutDefineReference(key, value) }
}

func inject(key, qualifier string) func(*mapdata.Model) error {
	return func(m *mapdata.Model) error { return m.PutInject(key, qualifier) }
}

func remap(key, qualifier string) func(*mapdata.Model) error {
	return func(m *mapdata.Model) error { return m.PutRemap(key, qualifier) }
}

func skip(key string) func(*mapdata.Model) error {
	return func(m *mapdata.Model) error { return m.PutSkip(key) }
}

func TestResolve_Basic(t *testing.T) {
	model := build(t,
		define("HOST", "db.internal"),
		define("URL", "postgres://{{HOST}}/app"),
		secret("PASSWORD", "vault:db/password"),
		reference("CA", "configmap:certs/ca"),
		inject("DATABASE_URL", "URL"),
		inject("PASSWORD", ""),
		inject("CA", ""),
	)

	set, err := New(model, Options{}).Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	want := Set{
		{Name: "CA", Value: "configmap:certs/ca", Kind: Reference},
		{Name: "DATABASE_URL", Value: "postgres://db.internal/app", Kind: Plain},
		{Name: "PASSWORD", Value: "vault:db/password", Kind: Secret},
	}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("Resolve = %+v\nwant %+v", set, want)
	}
	if variable, ok := set.Lookup("PASSWORD"); !ok || variable.Kind != Secret {
		t.Errorf("Lookup(PASSWORD) = %+v, %v", variable, ok)
	}
	if _, ok := set.Lookup("HOST"); ok {
		t.Error("Lookup(HOST) found a variable that was never injected")
	}
	if got := set.Filter(Secret).Names(); !reflect.DeepEqual(got, []string{"PASSWORD"}) {
		t.Errorf("Filter(Secret) = %v", got)
	}
}

func TestResolve_Deterministic(t *testing.T) {
	puts := []func(*mapdata.Model) error{
		define("A", "1"), define("B", "2"), define("C", "{{A}}{{B}}"),
		inject("Z", "C"), inject("A", ""), inject("M", "B"),
	}
	first, err := New(build(t, puts...), Options{}).Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	for range 10 {
		again, err := New(build(t, puts...), Options{}).Resolve()
		if err != nil {
			t.Fatalf("Resolve error: %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Resolve not deterministic: %+v vs %+v", first, again)
		}
	}
	if !reflect.DeepEqual(first.Names(), []string{"A", "M", "Z"}) {
		t.Errorf("Names = %v, want sorted", first.Names())
	}
}

func TestResolve_RemapPrecedence(t *testing.T) {
	model := build(t,
		define("OLD", "old"),
		define("NEW", "new"),
		inject("VALUE", "OLD"),
		remap("VALUE", "NEW"),
	)
	set, err := New(model, Options{}).Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if variable, _ := set.Lookup("VALUE"); variable.Value != "new" {
		t.Errorf("VALUE = %q, want the remapped value", variable.Value)
	}
}

func TestResolve_OrphanedRemapsBatched(t *testing.T) {
	model := build(t,
		define("X", "x"),
		inject("A", "X"),
		remap("A", "X"),
		remap("B", "X"),
		remap("C", "X"),
	)
	_, err := New(model, Options{}).Resolve()
	list, ok := fault.AsList(err)
	if !ok {
		t.Fatalf("Resolve error = %v, want a fault.List", err)
	}
	if !reflect.DeepEqual(list.Keys(), []string{"B", "C"}) {
		t.Errorf("orphaned keys = %v, want [B C]", list.Keys())
	}
	for _, e := range list {
		if e.Kind != fault.OrphanedRemap {
			t.Errorf("kind = %s, want OrphanedRemap", e.Kind)
		}
	}
}

func TestResolve_PlainBeforeSecret(t *testing.T) {
	model := build(t,
		define("TOKEN", "plain"),
		secret("TOKEN", "secret"),
		inject("TOKEN", ""),
	)
	set, err := New(model, Options{}).Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if variable, _ := set.Lookup("TOKEN"); variable.Value != "plain" || variable.Kind != Plain {
		t.Errorf("TOKEN = %+v, want the plain define", variable)
	}
}

func TestResolve_SkipList(t *testing.T) {
	model := build(t,
		inject("OPTIONAL", ""),
		skip("OPTIONAL"),
	)
	set, err := New(model, Options{}).Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if len(set) != 0 {
		t.Errorf("Resolve = %+v, want empty", set)
	}

	missing := build(t, inject("REQUIRED", "SOURCE"))
	_, err = New(missing, Options{}).Resolve()
	if !fault.Is(err, fault.Unresolved) {
		t.Fatalf("Resolve error = %v, want UnresolvedReference", err)
	}
	if !strings.Contains(err.Error(), "REQUIRED from SOURCE") {
		t.Errorf("error %q does not name the key and qualifier", err)
	}
}

func TestResolve_TemplatedQualifier(t *testing.T) {
	model := build(t,
		define("ENV", "PROD"),
		define("DB_PROD", "prod-db"),
		inject("DB", "DB_{{ENV}}"),
	)
	set, err := New(model, Options{}).Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if variable, _ := set.Lookup("DB"); variable.Value != "prod-db" {
		t.Errorf("DB = %q, want prod-db", variable.Value)
	}
}

func TestResolve_UnresolvedNamesRenderedQualifier(t *testing.T) {
	model := build(t,
		define("ENV", "dev"),
		inject("A", "{{ENV}}_URL"),
	)
	_, err := New(model, Options{}).Resolve()
	if !fault.Is(err, fault.Unresolved) {
		t.Fatalf("Resolve error = %v, want UnresolvedReference", err)
	}
	if !strings.Contains(err.Error(), "A from dev_URL") {
		t.Errorf("error %q does not name the rendered qualifier", err)
	}
	if strings.Contains(err.Error(), "{{ENV}}") {
		t.Errorf("error %q names the qualifier template", err)
	}
}

func TestResolve_TemplateErrors(t *testing.T) {
	model := build(t,
		define("A", "{{MISSING}}"),
		inject("A", ""),
	)
	_, err := New(model, Options{}).Resolve()
	var e *fault.Error
	if !errors.As(err, &e) || e.Kind != fault.Template || e.Reason != fault.MissingPlaceholder {
		t.Fatalf("Resolve error = %#v, want TemplateError(MissingPlaceholder)", err)
	}
	if !strings.Contains(e.Message, "{{MISSING}}") {
		t.Errorf("message %q does not name the placeholder", e.Message)
	}

	failing := templ.Func(func(string, templ.Lookup) (string, error) {
		return "", errors.New("engine exploded")
	})
	_, err = New(build(t, define("A", "a"), inject("A", "")), Options{Templater: failing}).Resolve()
	if !errors.As(err, &e) || e.Reason != fault.OtherTemplateFailure {
		t.Fatalf("Resolve error = %#v, want TemplateError(Other)", err)
	}
	if !strings.Contains(err.Error(), "engine exploded") {
		t.Errorf("error %q does not wrap the cause", err)
	}
}

func TestResolve_OnlyOnce(t *testing.T) {
	model := build(t, define("A", "a"), inject("A", ""))
	if _, err := New(model, Options{}).Resolve(); err != nil {
		t.Fatalf("first Resolve error: %v", err)
	}
	if _, err := New(model, Options{}).Resolve(); err == nil {
		t.Error("second Resolve over the same model succeeded")
	}
}

func TestBridgeData(t *testing.T) {
	model := build(t,
		define("HOST", "localhost"),
		define("URL", "http://{{HOST}}"),
		secret("TOKEN", "vault:token"),
		secret("HOST", "ignored"),
		reference("CA", "configmap:ca"),
		inject("ANYTHING", "NOWHERE"),
	)
	set, err := BridgeData(model, nil)
	if err != nil {
		t.Fatalf("BridgeData error: %v", err)
	}
	want := Set{
		{Name: "HOST", Value: "localhost", Kind: Plain},
		{Name: "TOKEN", Value: "vault:token", Kind: Secret},
		{Name: "URL", Value: "http://localhost", Kind: Plain},
	}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("BridgeData = %+v\nwant %+v", set, want)
	}
	if model.Finalized() {
		t.Error("BridgeData finalized the model")
	}
}

func TestSparse(t *testing.T) {
	renders := 0
	var mu sync.Mutex
	counting := templ.Func(func(text string, lookup templ.Lookup) (string, error) {
		mu.Lock()
		renders++
		mu.Unlock()
		return templ.Default().Render(text, lookup)
	})

	model := build(t,
		define("HOST", "localhost"),
		define("URL", "http://{{HOST}}"),
		secret("TOKEN", "vault:token"),
		reference("CA", "configmap:ca"),
	)
	sparse := NewSparse(model, counting)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			variable, found, err := sparse.Get("URL")
			if err != nil || !found || variable.Value != "http://localhost" {
				t.Errorf("Get(URL) = %+v, %v, %v", variable, found, err)
			}
		}()
	}
	wg.Wait()
	if renders != 1 {
		t.Errorf("URL rendered %d times, want 1", renders)
	}

	if variable, found, _ := sparse.Get("TOKEN"); !found || variable.Kind != Secret {
		t.Errorf("Get(TOKEN) = %+v, %v", variable, found)
	}
	if _, found, err := sparse.Get("CA"); found || err != nil {
		t.Errorf("Get(CA) found a reference: %v, %v", found, err)
	}
	if _, found, err := sparse.Get("NOPE"); found || err != nil {
		t.Errorf("Get(NOPE) = %v, %v", found, err)
	}
}

func TestKindText(t *testing.T) {
	for _, kind := range []Kind{Plain, Secret, Reference} {
		text, err := kind.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", kind, err)
		}
		var decoded Kind
		if err := decoded.UnmarshalText(text); err != nil || decoded != kind {
			t.Errorf("UnmarshalText(%s) = %v, %v", text, decoded, err)
		}
	}
	if _, err := Kind(7).MarshalText(); err == nil {
		t.Error("MarshalText accepted an invalid kind")
	}
	if _, err := ParseKind("public"); err == nil {
		t.Error("ParseKind accepted an unknown name")
	}
}
