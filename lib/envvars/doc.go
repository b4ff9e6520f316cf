// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package envvars is the resolution pipeline: it layers configuration
// documents into one model and resolves the result.
//
// An [Engine] is built from a rule tree (the selector nodes describing
// which context values are selected) and a set of immutable
// collaborators: the macro catalog, an optional naming policy, an
// optional foreign-key registry, and the template engine. Each call to
// [Engine.AddDocument] walks one document into a fresh model, validates
// that model's define keys against the naming policy, checks its
// foreign keys against the registry, and merges it into the accumulated
// model, so later documents override earlier ones key by key.
//
// [Engine.Resolve] then runs the single resolution pass; [Engine.Bridge]
// and [Engine.Sparse] expose defines without injects.
//
// Depends on lib/keyreg, lib/macro, lib/mapdata, lib/naming,
// lib/resolve, lib/selector and lib/templ.
package envvars
