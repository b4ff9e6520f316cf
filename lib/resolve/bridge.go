// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"sync"

	"github.com/bureau-foundation/envvars/lib/mapdata"
	"github.com/bureau-foundation/envvars/lib/templ"
)

// BridgeData renders every plain and secret define of model, ignoring
// injects and remaps. A key defined both ways yields the plain value.
// The model is not finalized.
func BridgeData(model *mapdata.Model, templater templ.Engine) (Set, error) {
	if templater == nil {
		templater = templ.Default()
	}

	seen := make(map[string]bool)
	var result Set
	for _, keys := range [][]string{model.DefineKeys(), model.SecretKeys()} {
		for _, key := range keys {
			if seen[key] {
				continue
			}
			seen[key] = true
			variable, _, err := lookup(model, templater, key, key)
			if err != nil {
				return nil, err
			}
			result = append(result, variable)
		}
	}
	sortSet(result)
	return result, nil
}

// Sparse renders single defines on demand. Each key is rendered at most
// once; later calls return the cached outcome. Safe for concurrent use
// provided the model is not mutated.
type Sparse struct {
	model     *mapdata.Model
	templater templ.Engine

	mu    sync.Mutex
	cache map[string]sparseEntry
}

type sparseEntry struct {
	variable Variable
	found    bool
	err      error
}

// NewSparse returns a lazy view of model's plain and secret defines.
func NewSparse(model *mapdata.Model, templater templ.Engine) *Sparse {
	if templater == nil {
		templater = templ.Default()
	}
	return &Sparse{model: model, templater: templater, cache: make(map[string]sparseEntry)}
}

// Get returns the rendered define for key. found is false when key is
// neither a plain nor a secret define.
func (s *Sparse) Get(key string) (variable Variable, found bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry, ok := s.cache[key]; ok {
		return entry.variable, entry.found, entry.err
	}

	var entry sparseEntry
	_, plain := s.model.Define(key)
	_, secret := s.model.DefineSecret(key)
	if plain || secret {
		entry.variable, entry.found, entry.err = lookup(s.model, s.templater, key, key)
	}
	s.cache[key] = entry
	return entry.variable, entry.found, entry.err
}
