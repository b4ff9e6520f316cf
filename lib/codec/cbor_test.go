// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"strings"
	"testing"
)

type level int

func (l level) MarshalText() ([]byte, error) {
	return []byte(strings.Repeat("*", int(l))), nil
}

func (l *level) UnmarshalText(text []byte) error {
	*l = level(len(text))
	return nil
}

type entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Level level  `json:"level"`
}

func TestMarshal_Deterministic(t *testing.T) {
	first, err := Marshal(map[string]string{"b": "2", "a": "1", "c": "3"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(map[string]string{"c": "3", "a": "1", "b": "2"})
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding differs between runs: %x != %x", first, again)
		}
	}
}

func TestTextMarshalerRoundTrip(t *testing.T) {
	original := []entry{{Name: "A", Value: "1", Level: 3}}
	data, err := Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	diagnostic, err := Diagnose(data)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if !strings.Contains(diagnostic, `"level": "***"`) {
		t.Errorf("diagnostic %s does not carry the level as text", diagnostic)
	}

	var decoded []entry
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != original[0] {
		t.Errorf("decoded %+v, want %+v", decoded, original)
	}
}

func TestUnmarshal_AnyUsesStringMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"outer": map[string]string{"inner": "x"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	outer, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded %T, want map[string]any", decoded)
	}
	if _, ok := outer["outer"].(map[string]any); !ok {
		t.Errorf("nested map decoded as %T", outer["outer"])
	}
}

func TestNewEncoder(t *testing.T) {
	var buffer bytes.Buffer
	encoder := NewEncoder(&buffer)
	if err := encoder.Encode(entry{Name: "A"}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	direct, err := Marshal(entry{Name: "A"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !bytes.Equal(buffer.Bytes(), direct) {
		t.Errorf("stream encoding %x differs from Marshal %x", buffer.Bytes(), direct)
	}
}
