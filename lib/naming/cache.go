// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package naming

import (
	"path/filepath"
	"sync"
)

// Cache memoizes [LoadPolicy] by cleaned schema path. Documents that
// name the same schema share one loaded policy.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

type cacheEntry struct {
	once   sync.Once
	policy *Policy
	err    error
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[string]*cacheEntry)}
}

// Load returns the policy for schemaPath, loading it on first use.
// Failures are cached too.
func (c *Cache) Load(schemaPath string) (*Policy, error) {
	schemaPath = filepath.Clean(schemaPath)

	c.mu.Lock()
	entry, ok := c.entries[schemaPath]
	if !ok {
		entry = &cacheEntry{}
		c.entries[schemaPath] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.policy, entry.err = LoadPolicy(schemaPath)
	})
	return entry.policy, entry.err
}

// Len returns the number of schema paths seen.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
