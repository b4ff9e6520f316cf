// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package codec holds the CBOR configuration behind the "cbor" output
// format.
//
// The encoder uses Core Deterministic Encoding (RFC 8949 §4.2): sorted
// map keys, smallest integer encoding, no indefinite-length items. The
// same resolved set therefore always produces identical bytes, so CBOR
// output can be hashed or diffed between runs.
//
// Types implementing encoding.TextMarshaler (such as resolve.Kind)
// encode as CBOR text strings, and decode back through
// encoding.TextUnmarshaler. Values decoded into any-typed targets use
// map[string]any for maps.
//
// Struct tags follow the JSON ones: fxamacker/cbor falls back to `json`
// tags when a field has no `cbor` tag, so types shared with the json
// output format carry a single `json` tag.
package codec
