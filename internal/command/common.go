// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/config"
	"github.com/staranto/olistconv/internal/meta"
	"github.com/staranto/olistconv/internal/offline"
)

// ShortCircuitTLDR checks the --tldr flag and, if present and available,
// runs `tldr olistconv-<subcmd>` and returns true so the caller can exit early.
func ShortCircuitTLDR(ctx context.Context, cmd *cli.Command, subcmd string) bool {
	if cmd.Bool("tldr") {
		if _, err := exec.LookPath("tldr"); err == nil {
			c := exec.CommandContext(ctx, "tldr", "olistconv-"+subcmd)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			_ = c.Run()
		}
		return true
	}
	return false
}

// GetMeta returns the meta.Meta stored in the Metadata of the command or its
// nearest ancestor. If missing, it returns the zero value.
func GetMeta(cmd *cli.Command) meta.Meta {
	if cmd == nil {
		return meta.Meta{}
	}
	for _, c := range cmd.Lineage() {
		if c.Metadata == nil {
			continue
		}
		if m, ok := c.Metadata["meta"].(meta.Meta); ok {
			return m
		}
	}
	return meta.Meta{}
}

// stdout is where command output goes. Tests point the root command's Writer
// at a buffer.
func stdout(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func stderr(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

// CommandBuilder constructs a cli.Command with the shared metadata, the
// --tldr flag and the command's own flags.
type CommandBuilder struct {
	Name      string
	Usage     string
	UsageText string
	Flags     []cli.Flag
	Action    func(context.Context, *cli.Command) error
	Commands  []*cli.Command
	Meta      meta.Meta
	// Nested commands inherit --tldr from their parent.
	Nested bool
}

// Build returns a configured cli.Command from the builder.
func (b *CommandBuilder) Build() *cli.Command {
	flags := b.Flags
	if !b.Nested {
		flags = append(flags, newTLDRFlag())
	}
	return &cli.Command{
		Name:      b.Name,
		Usage:     b.Usage,
		UsageText: b.UsageText,
		Metadata: map[string]any{
			"meta": b.Meta,
		},
		Flags:    flags,
		Commands: b.Commands,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if ShortCircuitTLDR(ctx, cmd, b.Name) {
				return nil
			}
			if b.Action == nil {
				return cli.ShowSubcommandHelp(cmd)
			}
			return b.Action(ctx, cmd)
		},
	}
}

// runtime is what a command needs to talk to the server: the registration
// holding the offline worker and a client routed through it.
type runtime struct {
	server       string
	storage      *offline.Storage
	registration *offline.Registration
	client       *http.Client
}

// offlineEnabled combines --offline with OLISTCONV_CACHE.
func offlineEnabled(cmd *cli.Command) bool {
	return cmd.Bool("offline") && GetMeta(cmd).Env.CacheEnabled()
}

// openStorage opens the offline cache storage.
func openStorage(cmd *cli.Command) (*offline.Storage, error) {
	s, err := offline.DefaultStorage(GetMeta(cmd).Env)
	if err != nil {
		return nil, fmt.Errorf("failed to open offline cache: %w", err)
	}
	return s, nil
}

// newWorker builds the worker for --server and --cache-name. The manifest
// may be overridden with cache.manifest in the config file.
func newWorker(cmd *cli.Command, storage *offline.Storage) (*offline.Worker, error) {
	opts := []offline.Option{offline.WithCacheName(cmd.String("cache-name"))}
	if manifest, err := config.GetStringSlice("cache.manifest"); err == nil && len(manifest) > 0 {
		opts = append(opts, offline.WithManifest(manifest))
	}
	return offline.NewWorker(storage, cmd.String("server"), opts...)
}

// newRuntime prepares the HTTP client for a command. With offline caching
// enabled an existing cache is restored, or installed when missing. A failed
// install leaves the client going straight to the network.
func newRuntime(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	rt := &runtime{
		server:       cmd.String("server"),
		registration: offline.NewRegistration(),
	}
	rt.client = offline.NewClient(rt.registration, cmd.Duration("timeout"))

	if !offlineEnabled(cmd) {
		log.Debug("offline cache disabled")
		return rt, nil
	}

	storage, err := openStorage(cmd)
	if err != nil {
		return nil, err
	}
	rt.storage = storage

	w, err := newWorker(cmd, storage)
	if err != nil {
		return nil, err
	}

	restored, err := rt.registration.Restore(ctx, w)
	if err != nil {
		return nil, err
	}
	if restored {
		log.Debugf("restored offline cache %s", w.Name())
		return rt, nil
	}

	if err := rt.registration.Register(ctx, w); err != nil {
		log.WithError(err).Warnf("offline cache %s not installed", w.Name())
	}
	return rt, nil
}
