// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"gopkg.in/yaml.v3"

	"github.com/bureau-foundation/envvars/lib/codec"
	"github.com/bureau-foundation/envvars/lib/resolve"
)

// Format names an output rendition.
type Format string

const (
	Env       Format = "env"
	ConfigMap Format = "configmap"
	K8s       Format = "k8s"
	JSON      Format = "json"
	YAML      Format = "yaml"
	CBOR      Format = "cbor"
	Table     Format = "table"
)

var formats = []Format{Env, ConfigMap, K8s, JSON, YAML, CBOR, Table}

// Formats lists the accepted format names.
func Formats() []string {
	names := make([]string, len(formats))
	for i, format := range formats {
		names[i] = string(format)
	}
	return names
}

// ParseFormat validates a format name.
func ParseFormat(name string) (Format, error) {
	for _, format := range formats {
		if string(format) == name {
			return format, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (valid: %s)", name, strings.Join(Formats(), ", "))
}

// Default object names used by the k8s format.
const (
	DefaultSecretName    = "envvarsecrets"
	DefaultConfigMapName = "envvardata"
)

// Options tunes rendering.
type Options struct {
	// SecretName is the Kubernetes Secret that secretKeyRef entries
	// point at. Empty means DefaultSecretName.
	SecretName string

	// ConfigMapName is the ConfigMap that configMapKeyRef entries point
	// at. Empty means DefaultConfigMapName.
	ConfigMapName string

	// Color enables ANSI styling for json, yaml and table.
	Color bool
}

// Write renders set to w.
func Write(w io.Writer, format Format, set resolve.Set, options Options) error {
	switch format {
	case Env:
		return writeEnv(w, set)
	case ConfigMap:
		return writeConfigMap(w, set)
	case K8s:
		return writeK8s(w, set, options)
	case JSON:
		data, err := json.MarshalIndent(records(set), "", "  ")
		if err != nil {
			return fmt.Errorf("encoding JSON: %w", err)
		}
		return writeHighlighted(w, append(data, '\n'), "json", options.Color)
	case YAML:
		data, err := yaml.Marshal(records(set))
		if err != nil {
			return fmt.Errorf("encoding YAML: %w", err)
		}
		return writeHighlighted(w, data, "yaml", options.Color)
	case CBOR:
		return codec.NewEncoder(w).Encode(records(set))
	case Table:
		return writeTable(w, set, options.Color)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// records never returns nil so an empty set encodes as an empty list.
func records(set resolve.Set) []resolve.Variable {
	if set == nil {
		return []resolve.Variable{}
	}
	return set
}

func writeEnv(w io.Writer, set resolve.Set) error {
	var buffer bytes.Buffer
	for _, variable := range set {
		buffer.WriteString(variable.Name)
		switch variable.Kind {
		case resolve.Secret:
			buffer.WriteString("=?=")
		case resolve.Reference:
			buffer.WriteString("=>=")
		default:
			buffer.WriteString("=")
		}
		buffer.WriteString(variable.Value)
		buffer.WriteByte('\n')
	}
	_, err := w.Write(buffer.Bytes())
	return err
}

func writeConfigMap(w io.Writer, set resolve.Set) error {
	var buffer bytes.Buffer
	for _, variable := range set.Filter(resolve.Plain) {
		fmt.Fprintf(&buffer, "%s=%s\n", variable.Name, variable.Value)
	}
	_, err := w.Write(buffer.Bytes())
	return err
}

type containerEnv struct {
	Name      string        `json:"name"`
	Value     *string       `json:"value,omitempty"`
	ValueFrom *valueFromRef `json:"valueFrom,omitempty"`
}

type valueFromRef struct {
	SecretKeyRef    *keyRef `json:"secretKeyRef,omitempty"`
	ConfigMapKeyRef *keyRef `json:"configMapKeyRef,omitempty"`
}

type keyRef struct {
	Name string `json:"name"`
	Key  string `json:"key"`
}

func writeK8s(w io.Writer, set resolve.Set, options Options) error {
	secretName := options.SecretName
	if secretName == "" {
		secretName = DefaultSecretName
	}
	configMapName := options.ConfigMapName
	if configMapName == "" {
		configMapName = DefaultConfigMapName
	}

	entries := make([]containerEnv, 0, len(set))
	for _, variable := range set {
		entry := containerEnv{Name: variable.Name}
		switch variable.Kind {
		case resolve.Secret:
			entry.ValueFrom = &valueFromRef{SecretKeyRef: &keyRef{Name: secretName, Key: variable.Value}}
		case resolve.Reference:
			entry.ValueFrom = &valueFromRef{ConfigMapKeyRef: &keyRef{Name: configMapName, Key: variable.Value}}
		default:
			value := variable.Value
			entry.Value = &value
		}
		entries = append(entries, entry)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding container env: %w", err)
	}
	return writeHighlighted(w, append(data, '\n'), "json", options.Color)
}

func writeHighlighted(w io.Writer, data []byte, language string, color bool) error {
	if !color {
		_, err := w.Write(data)
		return err
	}
	if err := quick.Highlight(w, string(data), language, "terminal256", "monokai"); err != nil {
		return fmt.Errorf("highlighting %s: %w", language, err)
	}
	return nil
}
