// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the envvars command tree: resolve, bridge,
// keys, check and version. Every document-reading command shares the
// same input flags and pipeline setup (see inputs.go); commands differ
// only in what they do with the loaded engine.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/bureau-foundation/envvars/cmd/envvars/cli"
	"github.com/bureau-foundation/envvars/lib/version"
)

// streams are where commands write. Tests substitute buffers.
type streams struct {
	stdout io.Writer
	stderr io.Writer
}

// Root builds and returns the complete envvars command tree writing to
// the process's standard streams.
func Root() *cli.Command {
	return newRoot(streams{stdout: os.Stdout, stderr: os.Stderr})
}

func newRoot(out streams) *cli.Command {
	return &cli.Command{
		Name: "envvars",
		Description: `envvars: resolve layered configuration documents into environment variables.

Documents are walked against a tree of contexts (environment, region,
service, ...) using the selector values for this run. Definitions from
matching scopes are merged, the injected names are resolved against
them, and the result is printed in the requested format.`,
		HelpOutput: out.stderr,
		Subcommands: []*cli.Command{
			resolveCommand(out),
			bridgeCommand(out),
			keysCommand(out),
			checkCommand(out),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					if len(args) > 0 {
						return cli.Usagef("version takes no arguments")
					}
					fmt.Fprintf(out.stdout, "envvars %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Resolve a service for production in eu as dotenv lines",
				Command:     "envvars resolve --rules rules.yaml -s environment=prod -s region=eu base.yaml service.yaml",
			},
			{
				Description: "Render a Kubernetes container env list",
				Command:     "envvars resolve --format k8s --secret-name app-secrets base.yaml",
			},
			{
				Description: "Look up a single definition without resolving injects",
				Command:     "envvars bridge --key DATABASE_URL base.yaml",
			},
			{
				Description: "Validate documents in CI",
				Command:     "envvars check --naming-policy naming/schema.yaml --key-registry keys.yaml base.yaml",
			},
		},
	}
}
