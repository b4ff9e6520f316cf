// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/zeebo/blake3"
)

// Digest is the BLAKE3-256 hash of a document's bytes.
type Digest [32]byte

// String returns the digest in hex.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Document is a parsed file together with its digest.
type Document struct {
	Path   string
	Digest Digest
	Data   map[string]any
}

// Cache memoizes document reads.
type Cache struct {
	logger *slog.Logger

	mu       sync.Mutex
	byPath   map[string]*pathEntry
	byDigest map[parseKey]*parseEntry
}

type pathEntry struct {
	once     sync.Once
	document Document
	err      error
}

// Identical bytes decode differently as YAML and JSON, so the format is
// part of the key.
type parseKey struct {
	digest Digest
	format Format
}

type parseEntry struct {
	once sync.Once
	data map[string]any
	err  error
}

// NewCache creates an empty cache. A nil logger discards.
func NewCache(logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		logger:   logger,
		byPath:   make(map[string]*pathEntry),
		byDigest: make(map[parseKey]*parseEntry),
	}
}

// Load returns the document at path, reading it on first use. Failures
// are cached too.
func (c *Cache) Load(path string) (Document, error) {
	c.mu.Lock()
	entry, ok := c.byPath[path]
	if !ok {
		entry = &pathEntry{}
		c.byPath[path] = entry
	}
	c.mu.Unlock()

	entry.once.Do(func() {
		entry.document, entry.err = c.read(path)
	})
	return entry.document, entry.err
}

// Len returns the number of distinct parsed documents.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.byDigest)
}

func (c *Cache) read(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	key := parseKey{digest: blake3.Sum256(data), format: FormatOf(path)}

	c.mu.Lock()
	parsed, shared := c.byDigest[key]
	if !shared {
		parsed = &parseEntry{}
		c.byDigest[key] = parsed
	}
	c.mu.Unlock()

	if shared {
		c.logger.Debug("sharing parsed document", "path", path, "digest", key.digest.String())
	}
	parsed.once.Do(func() {
		parsed.data, parsed.err = Parse(key.format, data)
	})
	if parsed.err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, parsed.err)
	}
	return Document{Path: path, Digest: key.digest, Data: parsed.data}, nil
}
