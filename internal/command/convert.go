// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/clients"
	"github.com/staranto/olistconv/internal/controller"
	"github.com/staranto/olistconv/internal/deliver"
	"github.com/staranto/olistconv/internal/meta"
	"github.com/staranto/olistconv/internal/ui"
	"github.com/staranto/olistconv/internal/upload"
)

// resolveClient finds the client named by spec among the loaded options. A
// spec matches an ID, a whole name, or a name's CL code, in that order.
func resolveClient(options []clients.Client, spec string) (clients.Client, bool) {
	for _, c := range options {
		if c.ID == spec {
			return c, true
		}
	}
	for _, c := range options {
		if strings.EqualFold(c.Name, spec) {
			return c, true
		}
	}
	for _, c := range options {
		if fields := strings.Fields(c.Name); len(fields) > 0 && strings.EqualFold(fields[0], spec) {
			return c, true
		}
	}
	return clients.Client{}, false
}

func parseDests(ctx context.Context, cmd *cli.Command) ([]deliver.Destination, error) {
	specs := cmd.StringSlice("dest")
	if len(specs) == 0 {
		specs = []string{"."}
	}

	opts := deliver.Options{
		Profile:  cmd.String("profile"),
		Region:   cmd.String("region"),
		Endpoint: cmd.String("endpoint"),
	}

	dests := make([]deliver.Destination, 0, len(specs))
	for _, spec := range specs {
		d, err := deliver.Parse(ctx, spec, opts)
		if err != nil {
			return nil, err
		}
		dests = append(dests, d)
	}
	return dests, nil
}

// ConvertCommandAction is the action handler for the "convert" subcommand.
// It stages one spreadsheet, submits it for the chosen client and delivers
// the converted file to every --dest.
func ConvertCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	path := cmd.String("file")
	if path == "" && cmd.Args().Len() > 0 {
		path = cmd.Args().First()
	}

	dests, err := parseDests(ctx, cmd)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	c := controller.New(rt.client, rt.server, controller.WithDestination(dests[0]))
	st := c.State()

	if _, err := c.LoadClients(ctx); err != nil {
		log.WithError(err).Warn("continuing without the client list")
	}

	if spec := cmd.String("client"); spec != "" {
		if client, ok := resolveClient(st.Options, spec); ok {
			st.SelectClient(client.ID)
		} else if !st.SelectClient(spec) {
			return fmt.Errorf("unknown client %q", spec)
		}
	}

	if path != "" {
		f, err := upload.Open(path)
		if err != nil {
			return err
		}
		if cmd.Bool("drop") {
			if err := st.Drop(f); err != nil {
				return &NoticeError{Notice: ui.Render(st.Preview, styles(cmd)), Err: err}
			}
		} else {
			st.Select(f)
		}
	}

	sty := styles(cmd)
	if st.Staged != nil {
		log.Debugf("staged %s", ui.RenderStaged(st, ui.PlainStyles()))
	}

	var res ui.Result
	err = ui.Spin(ctx, stderr(cmd), "Processando...", func() error {
		res = c.Submit(ctx)
		return nil
	})
	if err != nil {
		return err
	}

	view := ui.Render(st.Preview, sty)
	if failure, ok := res.(ui.Failure); ok {
		return &NoticeError{Notice: view, Err: failure}
	}

	fmt.Fprintln(stdout(cmd), view)

	if last, ok := c.Last(); ok && len(dests) > 1 {
		locations, err := deliver.Again(ctx, last.Filename, last.Blob, dests[1:]...)
		for _, loc := range locations {
			fmt.Fprintf(stdout(cmd), "  %s: %s\n", ui.DownloadAgain, loc)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// ConvertCommandBuilder constructs the cli.Command definition for the
// "convert" command.
func ConvertCommandBuilder(meta meta.Meta) *cli.Command {
	flags := []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile("convert", cfg.Source, &cli.StringFlag{
			Name:    "client",
			Aliases: []string{"C"},
			Usage:   "client ID, name or CL code to convert for",
			Sources: cli.NewValueSourceChain(fromEnv("OLISTCONV_CLIENT", meta.Env.Client)),
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		}),
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"F"},
			Usage:   "Excel budget spreadsheet to convert",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator)
			},
		},
		&cli.BoolFlag{
			Name:  "drop",
			Usage: "accept the file only with an .xlsx or .xls extension",
		},
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
		},
		NewDestFlag("convert", meta.Env),
	}
	flags = append(flags, NewAWSFlags(meta.Env)...)

	return (&CommandBuilder{
		Name:      "convert",
		Usage:     "convert a budget spreadsheet for a client",
		UsageText: `olistconv convert --client ID [--dest DIR|s3://bucket/prefix]... FILE`,
		Flags:     flags,
		Action:    ConvertCommandAction,
		Meta:      meta,
	}).Build()
}
