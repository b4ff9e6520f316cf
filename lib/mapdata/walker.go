// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mapdata

import (
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/bureau-foundation/envvars/lib/fault"
	"github.com/bureau-foundation/envvars/lib/macro"
	"github.com/bureau-foundation/envvars/lib/selector"
)

// Document section names.
const (
	SectionInject           = "inject"
	SectionRemap            = "remap"
	SectionSkipInject       = "skipInjectIfNotDefined"
	SectionDeclare          = "declare"
	SectionDeclareSecrets   = "declareSecrets"
	SectionDefine           = "define"
	SectionDefineSecrets    = "defineSecrets"
	SectionDefineReferences = "defineReferences"
)

// sectionPermissions maps each document section to the node permission
// that governs it, in processing order.
var sectionPermissions = []struct {
	name       string
	permission selector.Section
}{
	{SectionInject, selector.Inject},
	{SectionRemap, selector.Remap},
	{SectionSkipInject, selector.SkipInjectIfNotDefined},
	{SectionDeclare, selector.Declare},
	{SectionDeclareSecrets, selector.DefineSecrets},
	{SectionDefine, selector.Define},
	{SectionDefineSecrets, selector.DefineSecrets},
	{SectionDefineReferences, selector.DefineReferences},
}

const fromSeparator = " from "

// Walker reads documents into models.
type Walker struct {
	catalog *macro.Catalog
	logger  *slog.Logger
}

// NewWalker returns a walker that expands set references through
// catalog. A nil catalog has no sets; a nil logger discards.
func NewWalker(catalog *macro.Catalog, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Walker{catalog: catalog, logger: logger}
}

// Walk reads document into a new model.
func (w *Walker) Walk(nodes []*selector.Node, document map[string]any) (*Model, error) {
	model := NewModel()
	if err := w.WalkInto(model, nodes, document); err != nil {
		return nil, err
	}
	return model, nil
}

// WalkInto reads document into an existing model. On error the model
// keeps whatever was recorded before the failure.
func (w *Walker) WalkInto(model *Model, nodes []*selector.Node, document map[string]any) error {
	root := scope{entries: document}
	for _, node := range nodes {
		if err := w.walkContext(model, node, root, node.ContextRequired()); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) walkContext(model *Model, node *selector.Node, parent scope, required bool) error {
	path := node.Context()
	raw, present := parent.lookup(node.Context())
	if !present {
		if required {
			return fault.New(fault.MissingRequired, path, "context %q is required but absent", node.Context()).WithKey(node.Context())
		}
		return nil
	}

	context, ok := asScope(raw)
	if !ok {
		return fault.New(fault.Structural, path, "context %q must be a map, got %T", node.Context(), raw)
	}
	if context.nonStringKey {
		return fault.New(fault.Structural, path, "context %q has a non-string key", node.Context())
	}

	observed := make([]string, 0, len(context.entries))
	for key := range context.entries {
		if key != node.Sentinel() {
			observed = append(observed, key)
		}
	}
	model.PutForeignKeys(node.Context(), observed...)

	policy := node.DefaultPolicy()
	if policy.RejectsSentinel() {
		if _, present := context.entries[node.Sentinel()]; present {
			return fault.New(fault.Forbidden, path+":"+node.Sentinel(),
				"context %q has a %q entry but its default processing is %s", node.Context(), node.Sentinel(), policy).WithKey(node.Sentinel())
		}
	}
	if policy.Processes() {
		if err := w.walkSelector(model, node, context, node.Sentinel(), policy.SentinelRequired(), true); err != nil {
			return err
		}
	}

	return w.walkSelector(model, node, context, node.Selector(), node.SelectorRequired(), false)
}

// walkSelector processes one selected scope, either the node's selector
// or its default sentinel, then walks the child nodes inside it. Child
// contexts under the sentinel are never required.
func (w *Walker) walkSelector(model *Model, node *selector.Node, context scope, name string, required, sentinel bool) error {
	path := node.Context() + ":" + name
	raw, present := context.lookup(name)
	if !present {
		if required {
			return fault.New(fault.MissingRequired, path, "%s is required but absent", path).WithKey(name)
		}
		return nil
	}

	selected, ok := asScope(raw)
	if !ok {
		return fault.New(fault.Structural, path, "%s must be a map, got %T", path, raw)
	}

	standard := isStandard(node.Shape(), selected)
	w.logger.Debug("walking scope",
		"context", node.Context(),
		"selector", name,
		"sentinel", sentinel,
		"standard", standard,
	)

	var err error
	if standard {
		err = w.processSections(model, node, selected, path)
	} else {
		err = w.processImpliedDefine(model, node, selected, path)
	}
	if err != nil {
		return err
	}

	for _, child := range node.Children() {
		if err := w.walkContext(model, child, selected, child.ContextRequired() && !sentinel); err != nil {
			return err
		}
	}
	return nil
}

func isStandard(shape selector.Shape, s scope) bool {
	switch shape {
	case selector.ShapeStandard:
		return true
	case selector.ShapeImpliedDefine:
		return false
	}
	if s.nonStringKey {
		return true
	}
	for _, section := range sectionPermissions {
		if _, ok := s.entries[section.name]; ok {
			return true
		}
	}
	for _, value := range s.entries {
		if _, ok := value.(string); !ok {
			return true
		}
	}
	return false
}

func (w *Walker) processImpliedDefine(model *Model, node *selector.Node, s scope, path string) error {
	path = path + ":" + SectionDefine
	if !node.Sections().Permits(selector.Define) {
		return fault.New(fault.Forbidden, path, "%s holds an implied define block but define is not permitted", path)
	}
	values, err := stringMap(s, path)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(values) {
		if err := model.PutDefine(key, values[key]); err != nil {
			return at(err, path)
		}
	}
	return nil
}

func (w *Walker) processSections(model *Model, node *selector.Node, s scope, scopePath string) error {
	for _, section := range sectionPermissions {
		raw, present := s.lookup(section.name)
		if !present {
			continue
		}
		path := scopePath + ":" + section.name
		if !node.Sections().Permits(section.permission) {
			return fault.New(fault.Forbidden, path, "%s is not permitted here", section.name).WithKey(section.name)
		}

		var err error
		switch section.name {
		case SectionInject:
			err = w.processInject(model, raw, path)
		case SectionRemap:
			err = w.processRemap(model, raw, path)
		case SectionSkipInject:
			err = processSkip(model, raw, path)
		case SectionDeclare:
			err = w.processDeclare(model, raw, path, model.PutDefine)
		case SectionDeclareSecrets:
			err = w.processDeclare(model, raw, path, model.PutDefineSecret)
		case SectionDefine:
			err = processDefine(raw, path, model.PutDefine)
		case SectionDefineSecrets:
			err = processDefine(raw, path, model.PutDefineSecret)
		case SectionDefineReferences:
			err = processDefine(raw, path, model.PutDefineReference)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) processInject(model *Model, raw any, path string) error {
	list, err := stringList(raw, path)
	if err != nil {
		return err
	}
	expansion, err := w.catalog.ExpandInject(list, path)
	if err != nil {
		return err
	}
	for _, line := range expansion.Lines {
		key, qualifier, err := splitFrom(line, path)
		if err != nil {
			return err
		}
		if err := model.PutInject(key, qualifier); err != nil {
			return at(err, path)
		}
	}
	for _, line := range expansion.Optional {
		key, _, err := splitFrom(line, path)
		if err != nil {
			return err
		}
		if err := model.PutSkip(key); err != nil {
			return at(err, path)
		}
	}
	return nil
}

func (w *Walker) processRemap(model *Model, raw any, path string) error {
	list, err := stringList(raw, path)
	if err != nil {
		return err
	}
	expansion, err := w.catalog.ExpandInject(list, path)
	if err != nil {
		return err
	}
	if len(expansion.Optional) > 0 {
		return fault.New(fault.Structural, path,
			"optional entries are not allowed in a remap block: %v", expansion.Optional).WithKey(expansion.Optional[0])
	}
	for _, line := range expansion.Lines {
		key, qualifier, err := splitFrom(line, path)
		if err != nil {
			return err
		}
		if qualifier == "" {
			return fault.New(fault.Structural, path, "remap entry %q has no %q", line, strings.TrimSpace(fromSeparator)).WithKey(line)
		}
		if err := model.PutRemap(key, qualifier); err != nil {
			return at(err, path)
		}
	}
	return nil
}

func processSkip(model *Model, raw any, path string) error {
	list, err := stringList(raw, path)
	if err != nil {
		return err
	}
	for _, key := range list {
		if err := model.PutSkip(key); err != nil {
			return at(err, path)
		}
	}
	return nil
}

func (w *Walker) processDeclare(model *Model, raw any, path string, put func(key, value string) error) error {
	refs, err := stringList(raw, path)
	if err != nil {
		return err
	}
	for _, ref := range refs {
		if err := ValidateKey(ref); err != nil {
			return at(err, path)
		}
	}
	values, err := w.catalog.ExpandDefine(refs, path)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(values) {
		if err := put(key, values[key]); err != nil {
			return at(err, path)
		}
	}
	return nil
}

func processDefine(raw any, path string, put func(key, value string) error) error {
	s, ok := asScope(raw)
	if !ok {
		return fault.New(fault.Structural, path, "%s must be a map, got %T", path, raw)
	}
	values, err := stringMap(s, path)
	if err != nil {
		return err
	}
	for _, key := range sortedKeys(values) {
		if err := put(key, values[key]); err != nil {
			return at(err, path)
		}
	}
	return nil
}

// splitFrom separates "KEY from QUALIFIER". A line without the separator
// is a bare key with no qualifier.
func splitFrom(line, path string) (key, qualifier string, err error) {
	parts := strings.Split(line, fromSeparator)
	switch len(parts) {
	case 1:
		if err := ValidateKey(line); err != nil {
			return "", "", at(err, path)
		}
		return line, "", nil
	case 2:
		if parts[0] == "" {
			return "", "", fault.New(fault.Structural, path, "entry %q has a blank target before %q", line, "from").WithKey(line)
		}
		if parts[1] == "" {
			return "", "", fault.New(fault.Structural, path, "entry %q has a blank source after %q", line, "from").WithKey(line)
		}
		if err := ValidateKey(parts[0]); err != nil {
			return "", "", at(err, path)
		}
		return parts[0], parts[1], nil
	}
	return "", "", fault.New(fault.Structural, path, "entry %q has more than one %q", line, "from").WithKey(line)
}

// scope is one level of the document. YAML decoders produce map[any]any
// for maps whose keys are not all strings; such keys are dropped from
// entries and flagged.
type scope struct {
	entries      map[string]any
	nonStringKey bool
}

// lookup treats a present key with a null value as absent.
func (s scope) lookup(key string) (any, bool) {
	value, ok := s.entries[key]
	if !ok || value == nil {
		return nil, false
	}
	return value, true
}

func asScope(value any) (scope, bool) {
	switch m := value.(type) {
	case map[string]any:
		return scope{entries: m}, true
	case map[string]string:
		entries := make(map[string]any, len(m))
		for key, v := range m {
			entries[key] = v
		}
		return scope{entries: entries}, true
	case map[any]any:
		s := scope{entries: make(map[string]any, len(m))}
		for key, v := range m {
			if text, ok := key.(string); ok {
				s.entries[text] = v
			} else {
				s.nonStringKey = true
			}
		}
		return s, true
	}
	return scope{}, false
}

func stringList(raw any, path string) ([]string, error) {
	switch list := raw.(type) {
	case []string:
		return list, nil
	case []any:
		result := make([]string, len(list))
		for i, item := range list {
			if item == nil {
				return nil, fault.New(fault.Structural, path, "entry %d is null", i)
			}
			text, ok := item.(string)
			if !ok {
				return nil, fault.New(fault.Structural, path, "entry %d must be a string, got %T (%v)", i, item, item)
			}
			result[i] = text
		}
		return result, nil
	}
	return nil, fault.New(fault.Structural, path, "%s must be a list, got %T", path, raw)
}

func stringMap(s scope, path string) (map[string]string, error) {
	if s.nonStringKey {
		return nil, fault.New(fault.Structural, path, "%s has a non-string key", path)
	}
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	result := make(map[string]string, len(keys))
	for _, key := range keys {
		if err := ValidateKey(key); err != nil {
			return nil, at(err, path)
		}
		value := s.entries[key]
		if value == nil {
			return nil, fault.New(fault.Structural, path, "value for %s is null", key).WithKey(key)
		}
		text, ok := value.(string)
		if !ok {
			return nil, fault.New(fault.Structural, path, "value for %s must be a string, got %T (%v)", key, value, value).WithKey(key)
		}
		result[key] = text
	}
	return result, nil
}

// at fills in the path of a fault raised without one.
func at(err error, path string) error {
	var e *fault.Error
	if errors.As(err, &e) && e.Path == "" {
		e.Path = path
	}
	return err
}
