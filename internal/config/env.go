// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// DefaultCacheName is the version tag of the offline cache shipped with this
// build. Bump it to roll every installed cache over on the next activation.
const DefaultCacheName = "conversor-olist-cache-v1"

// Env holds the process environment that shapes every command. It is the
// only place OLISTCONV_* variables are read; flags see them through
// command.envSource. Empty fields mean unset, so flag defaults and the config
// file still apply.
type Env struct {
	Cfg         string `env:"OLISTCONV_CFG"`
	Server      string `env:"OLISTCONV_SERVER"`
	CacheDir    string `env:"OLISTCONV_CACHE_DIR"`
	Cache       string `env:"OLISTCONV_CACHE"`
	CacheName   string `env:"OLISTCONV_CACHE_NAME"`
	Timeout     string `env:"OLISTCONV_TIMEOUT"`
	Client      string `env:"OLISTCONV_CLIENT"`
	Dest        string `env:"OLISTCONV_DEST"`
	Listen      string `env:"OLISTCONV_LISTEN"`
	S3Endpoint  string `env:"OLISTCONV_S3_ENDPOINT"`
	AWSProfile  string `env:"AWS_PROFILE"`
	AWSRegion   string `env:"AWS_REGION"`
	FilterDelim string `env:"OLISTCONV_FILTER_DELIM"`
	LogLevel    string `env:"OLISTCONV_LOG" envDefault:"ERROR"`
}

// ParseEnv loads Env from environment variables.
func ParseEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, fmt.Errorf("parse env: %w", err)
	}
	return e, nil
}

// CacheEnabled is true unless OLISTCONV_CACHE is "0" or "false".
func (e Env) CacheEnabled() bool {
	return e.Cache == "" || (e.Cache != "0" && e.Cache != "false")
}
