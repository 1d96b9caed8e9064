// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"strconv"

	"github.com/apex/log"
	"github.com/dustin/go-humanize"
	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/meta"
	"github.com/staranto/olistconv/internal/ui"
)

// CacheInstallCommandAction pre-caches the manifest into the cache named by
// --cache-name.
func CacheInstallCommandAction(ctx context.Context, cmd *cli.Command) error {
	storage, err := openStorage(cmd)
	if err != nil {
		return err
	}
	w, err := newWorker(cmd, storage)
	if err != nil {
		return err
	}

	if err := w.Install(ctx); err != nil {
		return err
	}

	fmt.Fprintf(stdout(cmd), "installed %s (%d assets)\n", w.Name(), len(w.ManifestURLs()))
	return nil
}

// CacheActivateCommandAction deletes every cache except the one named by
// --cache-name.
func CacheActivateCommandAction(ctx context.Context, cmd *cli.Command) error {
	storage, err := openStorage(cmd)
	if err != nil {
		return err
	}
	w, err := newWorker(cmd, storage)
	if err != nil {
		return err
	}

	if !w.MarkInstalled() {
		return fmt.Errorf("cache %s is not installed", w.Name())
	}

	deleted, err := w.Activate(ctx)
	if err != nil {
		return err
	}

	for _, name := range deleted {
		fmt.Fprintf(stdout(cmd), "deleted %s\n", name)
	}
	fmt.Fprintf(stdout(cmd), "active %s\n", w.Name())
	return nil
}

// CacheStatusCommandAction lists every cache with its size. With --entries
// the stored URLs of each cache are listed instead.
func CacheStatusCommandAction(_ context.Context, cmd *cli.Command) error {
	storage, err := openStorage(cmd)
	if err != nil {
		return err
	}

	names, err := storage.Keys()
	if err != nil {
		return err
	}
	current := cmd.String("cache-name")
	log.Debugf("caches under %s: %v", storage.Dir(), names)

	var rows [][]string
	for _, name := range names {
		c, err := storage.Open(name)
		if err != nil {
			return err
		}
		entries, err := c.Keys()
		if err != nil {
			return err
		}

		if cmd.Bool("entries") {
			for _, e := range entries {
				rows = append(rows, []string{name, e.Key, humanize.Bytes(uint64(e.Size))})
			}
			continue
		}

		var total int64
		for _, e := range entries {
			total += e.Size
		}
		mark := ""
		if name == current {
			mark = "*"
		}
		rows = append(rows, []string{name, strconv.Itoa(len(entries)), humanize.Bytes(uint64(total)), mark})
	}

	headers := []string{"Cache", "Entries", "Size", "Current"}
	if cmd.Bool("entries") {
		headers = []string{"Cache", "URL", "Size"}
	}
	ui.WriteTable(stdout(cmd), headers, rows, cmd.Bool("titles"), cmd.Bool("color"))
	return nil
}

// CachePurgeCommandAction deletes the caches named as arguments, or every
// cache when none are named.
func CachePurgeCommandAction(_ context.Context, cmd *cli.Command) error {
	storage, err := openStorage(cmd)
	if err != nil {
		return err
	}

	names := cmd.Args().Slice()
	if len(names) == 0 {
		if names, err = storage.Keys(); err != nil {
			return err
		}
	}

	for _, name := range names {
		existed, err := storage.Delete(name)
		if err != nil {
			return err
		}
		if existed {
			fmt.Fprintf(stdout(cmd), "deleted %s\n", name)
		} else {
			log.Debugf("cache %s not found", name)
		}
	}
	return nil
}

// CacheCommandBuilder constructs the "cache" command and its subcommands.
func CacheCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "cache",
		Usage:     "manage the offline cache",
		UsageText: `olistconv cache install|activate|status|purge`,
		Meta:      meta,
		Commands: []*cli.Command{
			(&CommandBuilder{
				Name:   "install",
				Usage:  "pre-cache the core assets",
				Action: CacheInstallCommandAction,
				Meta:   meta,
				Nested: true,
			}).Build(),
			(&CommandBuilder{
				Name:   "activate",
				Usage:  "delete every other cache version",
				Action: CacheActivateCommandAction,
				Meta:   meta,
				Nested: true,
			}).Build(),
			(&CommandBuilder{
				Name:  "status",
				Usage: "list cache versions and their sizes",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "entries",
						Aliases: []string{"e"},
						Usage:   "list the stored URLs",
					},
					&cli.BoolWithInverseFlag{
						Name:    "titles",
						Aliases: []string{"t"},
						Usage:   "show titles with text output",
						Value:   true,
					},
					&cli.BoolWithInverseFlag{
						Name:    "color",
						Aliases: []string{"c"},
						Usage:   "enable colored text output",
					},
				},
				Action: CacheStatusCommandAction,
				Meta:   meta,
				Nested: true,
			}).Build(),
			(&CommandBuilder{
				Name:      "purge",
				Usage:     "delete cache versions",
				UsageText: `olistconv cache purge [NAME...]`,
				Action:    CachePurgeCommandAction,
				Meta:      meta,
				Nested:    true,
			}).Build(),
		},
	}).Build()
}
