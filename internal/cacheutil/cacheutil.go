// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package cacheutil

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/staranto/olistconv/internal/config"
)

// Dir resolves the base cache directory.
// Precedence:
//  1. OLISTCONV_CACHE_DIR, if set and non-empty
//  2. os.UserCacheDir()/olistconv
//
// Returns ("", false) if a base cannot be resolved (treat as disabled).
func Dir(e config.Env) (string, bool) {
	if e.CacheDir != "" {
		return e.CacheDir, true
	}
	if dir, err := os.UserCacheDir(); err == nil && dir != "" {
		return filepath.Join(dir, "olistconv"), true
	}
	return "", false
}

// EnsureBaseDir creates the base cache directory if caching is enabled and
// a base path can be resolved. Returns the path, whether it is usable, and an
// error if creation failed.
func EnsureBaseDir(e config.Env) (string, bool, error) {
	if !e.CacheEnabled() {
		return "", false, nil
	}
	base, ok := Dir(e)
	if !ok {
		return "", false, nil
	}
	if err := os.MkdirAll(base, 0o755); err != nil { //nolint:mnd
		return base, false, fmt.Errorf("failed to create cache base directory: %w", err)
	}
	return base, true, nil
}

// SubDir returns the base cache directory joined with subdirs, creating it.
func SubDir(e config.Env, subdirs ...string) (string, error) {
	base, ok, err := EnsureBaseDir(e)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("cache directory is disabled or unresolved")
	}
	dir := filepath.Join(append([]string{base}, subdirs...)...)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	return dir, nil
}

// EncodeKey hashes k with MD5 and returns the hex string. It is used as the
// on-disk file name for a clear-text key.
func EncodeKey(k string) string {
	h := md5.New()
	_, _ = h.Write([]byte(k))
	return hex.EncodeToString(h.Sum(nil))
}
