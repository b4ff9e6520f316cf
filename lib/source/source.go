// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format selects a document decoder.
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatOf picks the decoder for path by extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".jsonc":
		return JSON
	default:
		return YAML
	}
}

// Parse decodes data as a document of the given format. The top level
// must be a mapping; an empty document yields an empty map.
func Parse(format Format, data []byte) (map[string]any, error) {
	var document map[string]any
	switch format {
	case JSON:
		if err := json.Unmarshal(jsonc.ToJSON(data), &document); err != nil {
			return nil, fmt.Errorf("parsing JSON document: %w", err)
		}
	case YAML:
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("parsing YAML document: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %q", format)
	}
	if document == nil {
		document = map[string]any{}
	}
	return document, nil
}

// ReadFile reads and parses the document at path.
func ReadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	document, err := Parse(FormatOf(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return document, nil
}
