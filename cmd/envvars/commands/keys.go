// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/envvars/cmd/envvars/cli"
	"github.com/bureau-foundation/envvars/lib/keyreg"
)

func keysCommand(out streams) *cli.Command {
	var inputs inputFlags

	return &cli.Command{
		Name:    "keys",
		Summary: "List selector keys the documents use, per context",
		Description: `Print every selector key the documents mention, one context per line,
then check them against the foreign-key registries if any are
configured. A key the registry does not list is usually a typo or a
retired value.`,
		Usage: "envvars keys [flags] DOCUMENT...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("keys", pflag.ContinueOnError)
			inputs.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			session, _, err := inputs.open("keys", args, openOptions{deferKeyCheck: true})
			if err != nil {
				return err
			}

			model := session.engine.Model()
			for _, context := range model.ForeignKeyContexts() {
				fmt.Fprintf(out.stdout, "%s: %s\n", context, strings.Join(model.ForeignKeys(context), " "))
			}

			if session.registry == nil {
				return nil
			}
			return keyreg.Check(session.registry, model)
		},
	}
}
