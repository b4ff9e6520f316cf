// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/envvars/cmd/envvars/cli"
	"github.com/bureau-foundation/envvars/lib/output"
)

func resolveCommand(out streams) *cli.Command {
	var inputs inputFlags
	var render outputFlags

	return &cli.Command{
		Name:    "resolve",
		Summary: "Resolve documents into environment variables",
		Description: `Layer the documents in order, resolve every injected variable and
print the result.

Later documents override earlier ones key by key. Each injected name is
looked up among plain, then secret, then reference definitions; names
listed under skip are left out.`,
		Usage: "envvars resolve [flags] DOCUMENT...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("resolve", pflag.ContinueOnError)
			inputs.register(flagSet)
			render.register(flagSet)
			return flagSet
		},
		Run: func(args []string) error {
			session, _, err := inputs.open("resolve", args, openOptions{})
			if err != nil {
				return err
			}
			format, options, err := render.renderOptions(session.config, out.stdout)
			if err != nil {
				return err
			}

			set, err := session.engine.Resolve()
			if err != nil {
				return err
			}
			session.logger.Debug("writing output", "format", format, "variables", len(set))
			return output.Write(out.stdout, format, set, options)
		},
	}
}
