// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package envvars

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/bureau-foundation/envvars/lib/fault"
	"github.com/bureau-foundation/envvars/lib/keyreg"
	"github.com/bureau-foundation/envvars/lib/macro"
	"github.com/bureau-foundation/envvars/lib/naming"
	"github.com/bureau-foundation/envvars/lib/resolve"
	"github.com/bureau-foundation/envvars/lib/selector"
	"github.com/bureau-foundation/envvars/lib/testutil"
)

const rules = `
- context: environment
  subs:
    - context: region
      contextRequired: false
      selectorRequired: false
`

func newEngine(t *testing.T, selected map[string]string, options Options) *Engine {
	t.Helper()
	nodes, err := selector.ParseRulesYAML([]byte(rules), selected)
	if err != nil {
		t.Fatalf("ParseRulesYAML: %v", err)
	}
	return New(nodes, options)
}

const base = `
environment:
  default:
    define:
      LOG_LEVEL: info
      SERVICE_URL: https://{{HOST}}/api
    inject:
      - LOG_LEVEL
      - SERVICE_URL
  dev:
    define:
      HOST: dev.example.com
    region:
      eu:
        define:
          HOST: eu.dev.example.com
  prod:
    define:
      HOST: example.com
      LOG_LEVEL: warn
`

const overlay = `
environment:
  dev:
    define:
      LOG_LEVEL: debug
`

func TestEngine_LayersDocuments(t *testing.T) {
	engine := newEngine(t, map[string]string{"environment": "dev", "region": "eu"}, Options{})
	if err := engine.AddDocument("base.yaml", testutil.Document(t, base)); err != nil {
		t.Fatalf("AddDocument(base): %v", err)
	}
	if err := engine.AddDocument("overlay.yaml", testutil.Document(t, overlay)); err != nil {
		t.Fatalf("AddDocument(overlay): %v", err)
	}

	set, err := engine.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := resolve.Set{
		{Name: "LOG_LEVEL", Value: "debug", Kind: resolve.Plain},
		{Name: "SERVICE_URL", Value: "https://eu.dev.example.com/api", Kind: resolve.Plain},
	}
	if !reflect.DeepEqual(set, want) {
		t.Errorf("Resolve = %+v\nwant %+v", set, want)
	}
	if !reflect.DeepEqual(engine.Sources(), []string{"base.yaml", "overlay.yaml"}) {
		t.Errorf("Sources = %v", engine.Sources())
	}
	if err := engine.AddDocument("late.yaml", testutil.Document(t, overlay)); err == nil {
		t.Error("AddDocument after Resolve succeeded")
	}
}

func TestEngine_MacrosFromCatalog(t *testing.T) {
	catalog := macro.NewCatalog(
		map[string][]string{"web": {"PORT", "?TRACING"}},
		map[string]map[string]string{"defaults": {"PORT": "80{{$1}}"}},
	)
	engine := newEngine(t, map[string]string{"environment": "prod", "region": "eu"}, Options{Catalog: catalog})
	if err := engine.AddDocument("svc.yaml", testutil.Document(t, `
environment:
  prod:
    declare:
      - defaults<80>
    inject:
      - "*web"
`)); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	set, err := engine.Resolve()
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := set.Names(); !reflect.DeepEqual(got, []string{"PORT"}) {
		t.Errorf("Names = %v, want [PORT] with TRACING skipped", got)
	}
	if variable, _ := set.Lookup("PORT"); variable.Value != "8080" {
		t.Errorf("PORT = %q, want 8080", variable.Value)
	}
}

func TestEngine_NamingPolicy(t *testing.T) {
	lowercase, err := naming.NewRule("lowercase", ".*[a-z].*", "no lowercase letters", "use upper case")
	if err != nil {
		t.Fatalf("NewRule: %v", err)
	}
	engine := newEngine(t, map[string]string{"environment": "dev", "region": "eu"}, Options{
		Policy: &naming.Policy{MustNotMatch: []naming.Rule{lowercase}},
	})
	err = engine.AddDocument("bad.yaml", testutil.Document(t, `
environment:
  dev:
    define:
      goodName: x
      alsoBad: y
      FINE: z
`))
	list, ok := fault.AsList(err)
	if !ok {
		t.Fatalf("AddDocument error = %v, want a fault.List", err)
	}
	if !reflect.DeepEqual(list.Keys(), []string{"alsoBad", "goodName"}) {
		t.Errorf("violations = %v", list.Keys())
	}
	if len(engine.Model().DefineKeys()) != 0 {
		t.Error("rejected document was merged")
	}
}

func TestEngine_DocumentSchema(t *testing.T) {
	directory := t.TempDir()
	testutil.WriteFile(t, directory, "naming/definitions.yaml", `
variable_filters:
  upper:
    regex: "[A-Z][A-Z0-9_]*"
    usage: use names like APP_NAME
  reserved:
    regex: "K8S_.*"
`)
	testutil.WriteFile(t, directory, "naming/schema.yaml", `
definitions: [definitions.yaml]
variable_filters:
  all_of: [upper]
`)
	testutil.WriteFile(t, directory, "naming/strict.yaml", `
definitions: [definitions.yaml]
variable_filters:
  none_of: [reserved]
`)
	document := func(defines string) map[string]any {
		return testutil.Document(t, `
schema: naming/schema.yaml
environment:
  dev:
    define:
`+defines)
	}

	engine := newEngine(t, map[string]string{"environment": "dev", "region": "eu"}, Options{})
	name := filepath.Join(directory, "app.yaml")
	if err := engine.AddDocument(name, document("      APP_NAME: x\n")); err != nil {
		t.Fatalf("AddDocument(valid): %v", err)
	}
	err := engine.AddDocument(name, document("      lowerName: x\n"))
	if !fault.Is(err, fault.NamingViolation) {
		t.Fatalf("AddDocument error = %v, want NamingPolicyViolation", err)
	}
	if !strings.Contains(err.Error(), "use names like APP_NAME") {
		t.Errorf("error %q does not carry the schema's usage text", err)
	}

	// The document's schema joins the engine-wide policy.
	strict, err := naming.LoadPolicy(filepath.Join(directory, "naming/strict.yaml"))
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	joined := newEngine(t, map[string]string{"environment": "dev", "region": "eu"}, Options{Policy: strict})
	err = joined.AddDocument(name, document("      K8S_NODE: x\n      bad: y\n"))
	list, ok := fault.AsList(err)
	if !ok {
		t.Fatalf("AddDocument error = %v, want a fault.List", err)
	}
	if !reflect.DeepEqual(list.Keys(), []string{"K8S_NODE", "bad"}) {
		t.Errorf("violations = %v, want one from each policy", list.Keys())
	}

	// Documents without a schema key are checked by the shared policy alone.
	if err := joined.AddDocument("plain.yaml", testutil.Document(t, `
environment:
  dev:
    define:
      bad: y
`)); err != nil {
		t.Errorf("AddDocument(plain): %v", err)
	}
}

func TestEngine_DocumentSchemaErrors(t *testing.T) {
	engine := newEngine(t, map[string]string{"environment": "dev", "region": "eu"}, Options{})

	err := engine.AddDocument("odd.yaml", testutil.Document(t, `
schema: [not, a, path]
environment:
  dev: {}
`))
	if !fault.Is(err, fault.Structural) {
		t.Errorf("list schema: error = %v, want StructuralError", err)
	}

	err = engine.AddDocument(filepath.Join(t.TempDir(), "app.yaml"), testutil.Document(t, `
schema: missing.yaml
environment:
  dev: {}
`))
	if err == nil || !strings.Contains(err.Error(), "reading naming schema") {
		t.Errorf("missing schema: error = %v", err)
	}
	if len(engine.Sources()) != 0 {
		t.Errorf("sources = %v, want none added", engine.Sources())
	}
}

func TestEngine_ForeignKeys(t *testing.T) {
	registry := keyreg.MapRegistry{"environment": {"dev", "prod"}, "region": {"eu"}}
	engine := newEngine(t, map[string]string{"environment": "dev", "region": "eu"}, Options{Registry: registry})
	if err := engine.AddDocument("base.yaml", testutil.Document(t, base)); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	err := engine.AddDocument("typo.yaml", testutil.Document(t, `
environment:
  dev:
    define:
      HOST: x
  pord:
    define:
      HOST: y
`))
	if !fault.Is(err, fault.UnknownForeignKey) {
		t.Errorf("AddDocument error = %v, want UnknownForeignKey", err)
	}
}

func TestEngine_Bridge(t *testing.T) {
	engine := newEngine(t, map[string]string{"environment": "prod", "region": "eu"}, Options{})
	if err := engine.AddDocument("base.yaml", testutil.Document(t, base)); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}
	bridge, err := engine.Bridge()
	if err != nil {
		t.Fatalf("Bridge: %v", err)
	}
	if got := bridge.Names(); !reflect.DeepEqual(got, []string{"HOST", "LOG_LEVEL", "SERVICE_URL"}) {
		t.Errorf("Bridge names = %v", got)
	}
	variable, found, err := engine.Sparse().Get("SERVICE_URL")
	if err != nil || !found || variable.Value != "https://example.com/api" {
		t.Errorf("Sparse SERVICE_URL = %+v, %v, %v", variable, found, err)
	}
}
