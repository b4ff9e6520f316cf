// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPolicy controls the context's default sentinel entry.
type DefaultPolicy int

const (
	// Supported processes the sentinel entry when present.
	Supported DefaultPolicy = iota
	// Required processes the sentinel entry and fails when it is absent.
	Required
	// Forbidden fails when the sentinel entry is present.
	Forbidden
	// Ignored never looks at the sentinel entry.
	Ignored
)

var defaultPolicyNames = map[DefaultPolicy]string{
	Supported: "SUPPORTED",
	Required:  "REQUIRED",
	Forbidden: "FORBIDDEN",
	Ignored:   "IGNORED",
}

func (p DefaultPolicy) String() string {
	if name, ok := defaultPolicyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("DefaultPolicy(%d)", int(p))
}

// Processes reports whether a present sentinel entry is walked.
func (p DefaultPolicy) Processes() bool {
	return p == Supported || p == Required
}

// SentinelRequired reports whether an absent sentinel entry is an error.
func (p DefaultPolicy) SentinelRequired() bool {
	return p == Required
}

// RejectsSentinel reports whether a present sentinel entry is an error.
func (p DefaultPolicy) RejectsSentinel() bool {
	return p == Forbidden
}

// ParseDefaultPolicy accepts SUPPORTED, REQUIRED, FORBIDDEN or IGNORED,
// case-insensitively.
func ParseDefaultPolicy(text string) (DefaultPolicy, error) {
	upper := strings.ToUpper(strings.TrimSpace(text))
	for policy, name := range defaultPolicyNames {
		if name == upper {
			return policy, nil
		}
	}
	return 0, fmt.Errorf("unknown default processing %q (want SUPPORTED, REQUIRED, FORBIDDEN or IGNORED)", text)
}

// Section is one document section a node may permit.
type Section uint8

const (
	Declare Section = 1 << iota
	Define
	// DefineSecrets also governs the declareSecrets section.
	DefineSecrets
	DefineReferences
	Inject
	Remap
	SkipInjectIfNotDefined
)

// Sections is a set of permitted sections.
type Sections uint8

var sectionNames = []struct {
	section Section
	name    string
}{
	{Declare, "declare"},
	{Define, "define"},
	{DefineSecrets, "defineSecrets"},
	{DefineReferences, "defineReferences"},
	{Inject, "inject"},
	{Remap, "remap"},
	{SkipInjectIfNotDefined, "skipInjectIfNotDefined"},
}

func (s Section) String() string {
	for _, entry := range sectionNames {
		if entry.section == s {
			return entry.name
		}
	}
	return fmt.Sprintf("Section(%d)", uint8(s))
}

// Of builds a set from individual sections.
func Of(sections ...Section) Sections {
	var set Sections
	for _, section := range sections {
		set |= Sections(section)
	}
	return set
}

// Permits reports whether section is in the set.
func (s Sections) Permits(section Section) bool {
	return s&Sections(section) != 0
}

func (s Sections) String() string {
	var names []string
	for _, entry := range sectionNames {
		if s.Permits(entry.section) {
			names = append(names, entry.name)
		}
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Named presets. The first nine keep the permissions of the rule files
// this syntax comes from; ALL, NONE, REFERENCESONLY and NOREFERENCES
// are additions.
var (
	SecretsOnly        = Of(DefineSecrets)
	SecretsAllowed     = Of(Declare, Define, DefineSecrets)
	NoSecrets          = Of(Declare, Define, DefineReferences, Inject, Remap, SkipInjectIfNotDefined)
	DeclareOnly        = Of(Declare)
	DefineOnly         = Of(Declare, Define, DefineReferences)
	InjectOnly         = Of(Inject)
	InjectAndSkipOnly  = Of(Inject, SkipInjectIfNotDefined)
	RemapOnly          = Of(Remap)
	DefineAndRemapOnly = Of(Declare, Define, Remap)

	AllSections    = Of(Declare, Define, DefineSecrets, DefineReferences, Inject, Remap, SkipInjectIfNotDefined)
	NoSections     = Sections(0)
	ReferencesOnly = Of(DefineReferences)
	NoReferences   = Of(Declare, Define, DefineSecrets, Inject, Remap, SkipInjectIfNotDefined)

	presets = map[string]Sections{
		"SECRETSONLY":        SecretsOnly,
		"SECRETSALLOWED":     SecretsAllowed,
		"NOSECRETS":          NoSecrets,
		"DECLAREONLY":        DeclareOnly,
		"DEFINEONLY":         DefineOnly,
		"INJECTONLY":         InjectOnly,
		"INJECTANDSKIPONLY":  InjectAndSkipOnly,
		"REMAPONLY":          RemapOnly,
		"DEFINEANDREMAPONLY": DefineAndRemapOnly,
		"ALL":                AllSections,
		"NONE":               NoSections,
		"REFERENCESONLY":     ReferencesOnly,
		"NOREFERENCES":       NoReferences,
	}
)

// PresetNames returns the accepted preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseSections accepts a preset name.
func ParseSections(text string) (Sections, error) {
	if set, ok := presets[strings.ToUpper(strings.TrimSpace(text))]; ok {
		return set, nil
	}
	return 0, fmt.Errorf("unknown node sections preset %q (want one of %s)", text, strings.Join(PresetNames(), ", "))
}

// ParseSectionList accepts individual section names.
func ParseSectionList(names []string) (Sections, error) {
	var set Sections
	for _, name := range names {
		section, ok := sectionByName(name)
		if !ok {
			return 0, fmt.Errorf("unknown section %q", name)
		}
		set |= Sections(section)
	}
	return set, nil
}

func sectionByName(name string) (Section, bool) {
	for _, entry := range sectionNames {
		if entry.name == name {
			return entry.section, true
		}
	}
	return 0, false
}

// Shape overrides how a selector scope is classified.
type Shape int

const (
	// ShapeDetect classifies by content: a scope holding any section
	// key, non-string key, or non-string value is standard; anything
	// else is an implied define block.
	ShapeDetect Shape = iota
	// ShapeStandard always reads the scope as sections.
	ShapeStandard
	// ShapeImpliedDefine always reads the scope as a define block.
	ShapeImpliedDefine
)

func (s Shape) String() string {
	switch s {
	case ShapeDetect:
		return "detect"
	case ShapeStandard:
		return "standard"
	case ShapeImpliedDefine:
		return "define"
	}
	return fmt.Sprintf("Shape(%d)", int(s))
}

// ParseShape accepts detect, standard or define.
func ParseShape(text string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "", "detect":
		return ShapeDetect, nil
	case "standard":
		return ShapeStandard, nil
	case "define", "implied-define":
		return ShapeImpliedDefine, nil
	}
	return 0, fmt.Errorf("unknown scope shape %q (want detect, standard or define)", text)
}
