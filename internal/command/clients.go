// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/controller"
	"github.com/staranto/olistconv/internal/meta"
	"github.com/staranto/olistconv/internal/ui"
)

// NoticeError carries the text shown to the user for a failed command. The
// underlying error stays available through Unwrap.
type NoticeError struct {
	Notice string
	Err    error
}

func (e *NoticeError) Error() string {
	return e.Notice
}

func (e *NoticeError) Unwrap() error {
	return e.Err
}

func styles(cmd *cli.Command) ui.Styles {
	if cmd.Bool("color") {
		return ui.ColorStyles()
	}
	return ui.PlainStyles()
}

// ClientsCommandAction is the action handler for the "clients" subcommand. It
// loads the client list in selector order and prints it.
func ClientsCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	c := controller.New(rt.client, rt.server)
	list, err := c.LoadClients(ctx)
	if err != nil {
		return &NoticeError{Notice: ui.Render(c.State().Preview, styles(cmd)), Err: err}
	}
	if len(list) == 0 {
		fmt.Fprintln(stderr(cmd), ui.Render(c.State().Preview, styles(cmd)))
		return nil
	}

	return ui.WriteClients(stdout(cmd), list, ui.OutputOptions{
		Format: cmd.String("output"),
		Filter: cmd.String("filter"),
		Titles: cmd.Bool("titles"),
		Color:  cmd.Bool("color"),
	})
}

// ClientsCommandBuilder constructs the cli.Command definition for the
// "clients" command.
func ClientsCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "clients",
		Usage:     "list the clients available for conversion",
		UsageText: `olistconv clients [options]`,
		Flags:     NewOutputFlags("clients"),
		Action:    ClientsCommandAction,
		Meta:      meta,
	}).Build()
}
