// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// envvars resolves layered configuration documents into environment
// variables. Run "envvars --help" for the command list.
package main

import (
	"fmt"
	"os"

	"github.com/bureau-foundation/envvars/cmd/envvars/cli"
	"github.com/bureau-foundation/envvars/cmd/envvars/commands"
)

func main() {
	if err := run(); err != nil {
		// check prints its own report and returns an ExitError; don't
		// follow it with a redundant "error:" line.
		if !cli.IsSilent(err) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(cli.ExitCodeOf(err))
	}
}

func run() error {
	return commands.Root().Execute(os.Args[1:])
}
