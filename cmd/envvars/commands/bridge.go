// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/envvars/cmd/envvars/cli"
	"github.com/bureau-foundation/envvars/lib/output"
	"github.com/bureau-foundation/envvars/lib/resolve"
)

func bridgeCommand(out streams) *cli.Command {
	var inputs inputFlags
	var render outputFlags
	var key string

	return &cli.Command{
		Name:    "bridge",
		Summary: "Print every plain and secret definition",
		Description: `Print bridge data: every plain and secret definition from the
selected scopes, templated, whether or not anything injects it.

With --key, only that definition is rendered.`,
		Usage: "envvars bridge [flags] DOCUMENT...",
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("bridge", pflag.ContinueOnError)
			inputs.register(flagSet)
			render.register(flagSet)
			flagSet.StringVarP(&key, "key", "k", "", "render a single definition")
			return flagSet
		},
		Run: func(args []string) error {
			session, _, err := inputs.open("bridge", args, openOptions{})
			if err != nil {
				return err
			}
			format, options, err := render.renderOptions(session.config, out.stdout)
			if err != nil {
				return err
			}

			var set resolve.Set
			if key != "" {
				variable, found, err := session.engine.Sparse().Get(key)
				if err != nil {
					return err
				}
				if !found {
					return fmt.Errorf("%s is not defined in the selected scopes", key)
				}
				set = resolve.Set{variable}
			} else {
				set, err = session.engine.Bridge()
				if err != nil {
					return err
				}
			}
			return output.Write(out.stdout, format, set, options)
		},
	}
}
