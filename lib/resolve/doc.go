// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package resolve turns a populated model into the final set of
// environment variables.
//
// A [Resolver] visits every inject entry of a [mapdata.Model] in key
// order. A remap for the same key replaces the inject's qualifier; the
// qualifier (or the key itself, when there is none) is rendered through
// the template engine and looked up among plain defines, then secret
// defines, then define references. The first hit is rendered and
// emitted with its [Kind]. Misses fail unless the key is on the skip
// list, and remaps that no inject consumed are reported together as one
// batched error.
//
// [BridgeData] and [Sparse] expose the defines of a model directly,
// without injects, for callers that need the whole catalog of values
// (bridge data) or single keys on demand.
//
// Key exports:
//
//   - [New], [Resolver.Resolve]: the resolution pass
//   - [Set], [Variable], [Kind]: the result
//   - [BridgeData], [NewSparse]: define views that ignore injects
//
// Depends on lib/fault, lib/mapdata and lib/templ.
package resolve
