// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/envvars/cmd/envvars/cli"
	"github.com/bureau-foundation/envvars/lib/fault"
)

func checkCommand(out streams) *cli.Command {
	var inputs inputFlags

	return &cli.Command{
		Name:    "check",
		Summary: "Validate documents without printing variables",
		Description: `Walk every document, validate definition names, check foreign keys and
resolve, reporting every problem found. A failing document does not
stop the others from being checked; resolution runs only when every
document loaded cleanly.

Exits 1 when anything was reported.`,
		Usage: "envvars check [flags] DOCUMENT...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("check", pflag.ContinueOnError)
			inputs.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			session, failures, err := inputs.open("check", args, openOptions{collect: true})
			if err != nil {
				return err
			}

			if len(failures) == 0 {
				set, err := session.engine.Resolve()
				if err != nil {
					failures = append(failures, err)
				} else {
					fmt.Fprintf(out.stdout, "ok: %d variables from %d documents\n",
						len(set), len(session.engine.Sources()))
					return nil
				}
			}

			problems := 0
			for _, failure := range failures {
				problems += report(out, failure)
			}
			fmt.Fprintf(out.stderr, "%d problems found\n", problems)
			return &cli.ExitError{Code: 1}
		},
	}
}

// report prints one line per problem in err and returns the count.
func report(out streams, err error) int {
	if list, ok := fault.AsList(err); ok && len(list) > 1 {
		for _, entry := range list {
			fmt.Fprintf(out.stderr, "problem: %v\n", entry)
		}
		return len(list)
	}
	fmt.Fprintf(out.stderr, "problem: %v\n", err)
	return 1
}
