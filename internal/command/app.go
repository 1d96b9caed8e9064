// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/config"
	"github.com/staranto/olistconv/internal/meta"
)

func InitApp(ctx context.Context, args []string) (*cli.Command, error) {
	sd, _ := os.Getwd()

	// The arg[1] immediately following the binary (arg[0]) is the olistconv
	// subcommand and also the namespace used when retrieving config values.
	// arg[1] could be -h/--help, so ignore it if it appears to be a flag.
	if len(args) > 1 && !strings.HasPrefix(args[1], "-") {
		config.Config.Namespace = args[1]
	}

	env, err := config.ParseEnv()
	if err != nil {
		return nil, err
	}

	meta := meta.Meta{
		Args:        args,
		Config:      config.Config,
		Context:     ctx,
		Env:         env,
		StartingDir: sd,
	}

	app := &cli.Command{
		Name:  "olistconv",
		Usage: "Conversor Olist client and offline cache",
		Flags: append(NewRootFlags(env),
			&cli.BoolFlag{
				Name:        "version",
				Aliases:     []string{"v"},
				Usage:       "olistconv version info",
				HideDefault: true,
			},
		),
		Metadata: map[string]any{
			"meta": meta,
		},
	}

	app.Commands = append(app.Commands,
		CacheCommandBuilder(meta),
		ClientsCommandBuilder(meta),
		CompletionCommandBuilder(meta),
		ConvertCommandBuilder(meta),
		ServeCommandBuilder(meta),
		SkipWaitingCommandBuilder(meta),
	)

	// Make sure flags are sorted for the --help text.
	for _, cmd := range app.Commands {
		sort.Slice(cmd.Flags, func(i, j int) bool {
			return cmd.Flags[i].Names()[0] < cmd.Flags[j].Names()[0]
		})
	}

	return app, nil
}
