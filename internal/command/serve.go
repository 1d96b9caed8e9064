// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"errors"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/apex/log"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/olistconv/internal/config"
	"github.com/staranto/olistconv/internal/meta"
	"github.com/staranto/olistconv/internal/offline"
)

// reloadWorker re-reads the config file and registers a worker for the
// cache name it names. The new worker waits while requests are in flight.
func reloadWorker(ctx context.Context, cmd *cli.Command, rt *runtime) error {
	name := cmd.String("cache-name")
	if cfg.Source != "" {
		if loaded, err := config.Load(cfg.Source); err == nil {
			cfg = loaded
		} else {
			log.WithError(err).Warn("failed to reload config")
		}
		name, _ = config.GetString("cache.name", name)
	}

	opts := []offline.Option{offline.WithCacheName(name)}
	if manifest, err := config.GetStringSlice("cache.manifest"); err == nil && len(manifest) > 0 {
		opts = append(opts, offline.WithManifest(manifest))
	}
	w, err := offline.NewWorker(rt.storage, rt.server, opts...)
	if err != nil {
		return err
	}

	if active := rt.registration.Active(); active != nil && active.Name() == w.Name() {
		log.Infof("worker %s already active", w.Name())
		return nil
	}

	log.Infof("installing worker %s", w.Name())
	return rt.registration.Register(ctx, w)
}

// ServeCommandAction is the action handler for the "serve" subcommand. It runs
// the caching reverse proxy until interrupted. SIGHUP installs the worker
// named by the reloaded config.
func ServeCommandAction(ctx context.Context, cmd *cli.Command) error {
	m := GetMeta(cmd)
	log.Debugf("Executing action for %v", m.Args)

	upstream, err := url.Parse(cmd.String("server"))
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cmd)
	if err != nil {
		return err
	}

	srv := &offline.Server{
		Registration: rt.registration,
		Upstream:     upstream,
		Addr:         cmd.String("listen"),
	}

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.ListenAndServe(gctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-hup:
				if rt.storage == nil {
					log.Warn("offline cache disabled, ignoring SIGHUP")
					continue
				}
				if err := reloadWorker(gctx, cmd, rt); err != nil {
					log.WithError(err).Error("worker reload failed")
				}
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// ServeCommandBuilder constructs the cli.Command definition for the "serve"
// command.
func ServeCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "serve",
		Usage:     "run a local caching proxy in front of the server",
		UsageText: `olistconv serve [--listen ADDR]`,
		Flags:     []cli.Flag{NewListenFlag("serve", meta.Env)},
		Action:    ServeCommandAction,
		Meta:      meta,
	}).Build()
}

// SkipWaitingCommandAction is the action handler for the "skip-waiting"
// subcommand. It asks a running proxy to activate its waiting worker.
func SkipWaitingCommandAction(ctx context.Context, cmd *cli.Command) error {
	base := cmd.String("listen")
	if u, err := url.Parse(base); err != nil || u.Scheme == "" || u.Host == "" {
		base = "http://" + base
	}

	client := offline.NewClient(nil, cmd.Duration("timeout"))
	if err := offline.PostMessage(ctx, client, base, offline.Message{Action: offline.ActionSkipWaiting}); err != nil {
		return err
	}
	log.Infof("skipWaiting sent to %s", base)
	return nil
}

// SkipWaitingCommandBuilder constructs the cli.Command definition for the
// "skip-waiting" command.
func SkipWaitingCommandBuilder(meta meta.Meta) *cli.Command {
	return (&CommandBuilder{
		Name:      "skip-waiting",
		Usage:     "activate the waiting cache worker of a running proxy",
		UsageText: `olistconv skip-waiting [--listen ADDR]`,
		Flags:     []cli.Flag{NewListenFlag("serve", meta.Env)},
		Action:    SkipWaitingCommandAction,
		Meta:      meta,
	}).Build()
}
