// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package output renders a resolved variable set.
//
// Formats:
//
//   - env: one KEY=VALUE line per variable. Secrets are written as
//     KEY=?=VALUE and references as KEY=>=VALUE, so a consumer can tell
//     which values name something held elsewhere.
//   - configmap: KEY=VALUE lines for plain variables only, suitable as
//     the data of a Kubernetes ConfigMap.
//   - k8s: a JSON list of container env entries. Plain variables carry
//     their value; secrets become secretKeyRef and references become
//     configMapKeyRef entries against the configured object names.
//   - json, yaml, cbor: the set as a list of {name, value, kind}.
//   - table: a bordered table styled by kind.
//
// With [Options.Color] set, json and yaml output is syntax highlighted
// and the table is coloured; otherwise output is plain text.
package output
