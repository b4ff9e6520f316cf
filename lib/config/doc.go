// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the envvars tool configuration.
//
// The configuration names the inputs every invocation shares: the rule
// file, macro catalogs, naming policy, foreign-key registries, default
// selector values, and output settings. It is found, in order, through
// the --config flag (via [LoadFile]), the ENVVARS_CONFIG environment
// variable, or ./envvars.yaml in the working directory (via [Load]).
// When none exists [Load] returns [Default].
//
// A file may define named profiles that override the base values when
// [Config].Profile selects them, much like the per-environment override
// blocks of a deployment config. After profiles are applied, the
// ENVVARS_FORMAT, ENVVARS_RULES, ENVVARS_NAMING_POLICY and
// ENVVARS_PROFILE environment variables override the file.
//
// String values support ${VAR} and ${VAR:-default} expansion against
// the process environment. Relative paths are resolved against the
// directory holding the configuration file.
//
// Key exports:
//
//   - [Config] -- the tool configuration
//   - [Default] -- built-in defaults
//   - [Load] and [LoadFile] -- the two entry points for loading
//
// This package depends on no other envvars packages.
package config
