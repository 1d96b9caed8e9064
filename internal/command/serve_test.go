// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/config"
	"github.com/staranto/olistconv/internal/offline"
)

func writeCacheName(t *testing.T, path, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("cache:\n  name: "+name+"\n"), 0o600))
}

func TestReloadWorker(t *testing.T) {
	srv := newFakeConverter(t)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, config.FileName)
	writeCacheName(t, cfgPath, "v1")

	savedCfg, savedConfig := cfg, config.Config
	t.Cleanup(func() {
		cfg, config.Config = savedCfg, savedConfig
	})
	loaded, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg = loaded

	storage, err := offline.NewStorage(filepath.Join(dir, "offline"))
	require.NoError(t, err)
	rt := &runtime{
		server:       srv.URL,
		storage:      storage,
		registration: offline.NewRegistration(),
	}

	reload := func() {
		t.Helper()
		cmd := &cli.Command{
			Name:  "serve",
			Flags: []cli.Flag{&cli.StringFlag{Name: "cache-name", Value: "v0"}},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return reloadWorker(ctx, cmd, rt)
			},
		}
		require.NoError(t, cmd.Run(context.Background(), []string{"serve"}))
	}

	// The config file wins over the flag default.
	reload()
	require.NotNil(t, rt.registration.Active())
	assert.Equal(t, "v1", rt.registration.Active().Name())

	// Same name again is a no-op.
	active := rt.registration.Active()
	reload()
	assert.Same(t, active, rt.registration.Active())

	// A new name waits while a request is in flight.
	release := rt.registration.Claim()
	writeCacheName(t, cfgPath, "v2")
	reload()
	assert.Equal(t, "v1", rt.registration.Active().Name())
	require.NotNil(t, rt.registration.Waiting())
	assert.Equal(t, "v2", rt.registration.Waiting().Name())
	assert.True(t, storage.Has("v1"))

	release()
	assert.Equal(t, "v2", rt.registration.Active().Name())
	assert.Nil(t, rt.registration.Waiting())

	names, err := storage.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"v2"}, names)
}

func TestReloadWorker_InstallFailureKeepsActive(t *testing.T) {
	srv := newFakeConverter(t)
	dir := t.TempDir()

	t.Setenv("OLISTCONV_CFG", filepath.Join(dir, "missing.yaml"))
	savedCfg, savedConfig := cfg, config.Config
	t.Cleanup(func() {
		cfg, config.Config = savedCfg, savedConfig
	})
	cfg, config.Config = config.Type{}, config.Type{}

	storage, err := offline.NewStorage(filepath.Join(dir, "offline"))
	require.NoError(t, err)
	rt := &runtime{
		server:       srv.URL,
		storage:      storage,
		registration: offline.NewRegistration(),
	}

	run := func(server, name string) error {
		cmd := &cli.Command{
			Name:  "serve",
			Flags: []cli.Flag{&cli.StringFlag{Name: "cache-name"}},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return reloadWorker(ctx, cmd, rt)
			},
		}
		rt.server = server
		return cmd.Run(context.Background(), []string{"serve", "--cache-name", name})
	}

	require.NoError(t, run(srv.URL, "v1"))
	assert.Equal(t, "v1", rt.registration.Active().Name())

	err = run("http://127.0.0.1:1", "v2")
	assert.ErrorIs(t, err, offline.ErrInstallFailed)
	assert.Equal(t, "v1", rt.registration.Active().Name())
	assert.False(t, storage.Has("v2"))
}
