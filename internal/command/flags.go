// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"fmt"
	"os/exec"
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	yaml "github.com/urfave/cli-altsrc/v3/yaml"
	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/config"
)

func init() {
	cfg, _ = config.Load("")
}

// DefaultListen is the proxy's default listen address.
const DefaultListen = "localhost:8080"

var cfg config.Type

// envSource is a flag value source backed by a field of config.Env. It sits
// first in a flag's source chain, ahead of the config file.
type envSource struct {
	key   string
	value string
}

func fromEnv(key, value string) envSource {
	return envSource{key: key, value: value}
}

// Lookup implements cli.ValueSource. An empty value counts as unset.
func (s envSource) Lookup() (string, bool) {
	return s.value, s.value != ""
}

func (s envSource) String() string {
	return fmt.Sprintf("environment variable %q", s.key)
}

func (s envSource) GoString() string {
	return fmt.Sprintf("&envSource{key:%q}", s.key)
}

// newTLDRFlag constructs the --tldr flag, hidden when tldr is not installed.
func newTLDRFlag() *cli.BoolFlag {
	return &cli.BoolFlag{
		Name:        "tldr",
		Usage:       "show tldr page",
		Hidden:      !pathHas("tldr"),
		HideDefault: true,
	}
}

// NewRootFlags returns the flags shared by every command.
func NewRootFlags(env config.Env) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Usage:   "base URL of the conversion server",
			Sources: cli.NewValueSourceChain(
				fromEnv("OLISTCONV_SERVER", env.Server),
				yaml.YAML("server", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "http://localhost:5000",
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, ServerURLValidator)
			},
		},
		&cli.StringFlag{
			Name:    "cache-name",
			Usage:   "version tag of the offline cache",
			Sources: cli.NewValueSourceChain(
				fromEnv("OLISTCONV_CACHE_NAME", env.CacheName),
				yaml.YAML("cache.name", altsrc.StringSourcer(cfg.Source)),
			),
			Value: config.DefaultCacheName,
			Validator: func(value string) error {
				return FlagValidators(value, JammedFlagValidator, CacheNameValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:  "offline",
			Usage: "route requests through the offline cache",
			Sources: cli.NewValueSourceChain(
				yaml.YAML("cache.enabled", altsrc.StringSourcer(cfg.Source)),
			),
			Value: true,
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per request timeout, 0 for none",
			Sources: cli.NewValueSourceChain(
				fromEnv("OLISTCONV_TIMEOUT", env.Timeout),
				yaml.YAML("timeout", altsrc.StringSourcer(cfg.Source)),
			),
			Value: time.Duration(0),
		},
	}
}

// NewOutputFlags returns the flags of commands that print a client list.
func NewOutputFlags(ns string) []cli.Flag {
	return []cli.Flag{
		&cli.BoolWithInverseFlag{
			Name:    "color",
			Aliases: []string{"c"},
			Usage:   "enable colored text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"color", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("color", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
		&cli.StringFlag{
			Name:    "filter",
			Aliases: []string{"f"},
			Usage:   "comma-separated list of filters to apply to results",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"output", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("output", altsrc.StringSourcer(cfg.Source)),
			),
			Value: "text",
			Validator: func(value string) error {
				return FlagValidators(value, OutputValidator)
			},
		},
		&cli.BoolWithInverseFlag{
			Name:    "titles",
			Aliases: []string{"t"},
			Usage:   "show titles with text output",
			Sources: cli.NewValueSourceChain(
				yaml.YAML(ns+"."+"titles", altsrc.StringSourcer(cfg.Source)),
				yaml.YAML("titles", altsrc.StringSourcer(cfg.Source)),
			),
			Value: false,
		},
	}
}

// NewDestFlag constructs the --dest flag, namespaced to a command in the
// config file.
func NewDestFlag(ns string, env config.Env) *cli.StringSliceFlag {
	return &cli.StringSliceFlag{
		Name:    "dest",
		Aliases: []string{"d"},
		Usage:   "directory or s3://bucket/prefix to write the converted file to, repeatable",
		Sources: cli.NewValueSourceChain(
			fromEnv("OLISTCONV_DEST", env.Dest),
			yaml.YAML(ns+"."+"dest", altsrc.StringSourcer(cfg.Source)),
			yaml.YAML("dest", altsrc.StringSourcer(cfg.Source)),
		),
		Validator: func(values []string) error {
			for _, v := range values {
				if err := FlagValidators(v, JammedFlagValidator, DestValidator); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

// NewAWSFlags returns the flags that shape S3 delivery.
func NewAWSFlags(env config.Env) []cli.Flag {
	return []cli.Flag{
		NameSpacedValueChainFlagFromConfigFile("aws", cfg.Source, &cli.StringFlag{
			Name:    "profile",
			Usage:   "AWS shared config profile for s3 destinations",
			Sources: cli.NewValueSourceChain(fromEnv("AWS_PROFILE", env.AWSProfile)),
		}),
		NameSpacedValueChainFlagFromConfigFile("aws", cfg.Source, &cli.StringFlag{
			Name:    "region",
			Usage:   "AWS region for s3 destinations",
			Sources: cli.NewValueSourceChain(fromEnv("AWS_REGION", env.AWSRegion)),
		}),
		NameSpacedValueChainFlagFromConfigFile("aws", cfg.Source, &cli.StringFlag{
			Name:    "endpoint",
			Usage:   "S3 compatible endpoint URL",
			Sources: cli.NewValueSourceChain(fromEnv("OLISTCONV_S3_ENDPOINT", env.S3Endpoint)),
		}),
	}
}

// NewListenFlag constructs the proxy address flag.
func NewListenFlag(ns string, env config.Env) *cli.StringFlag {
	return NameSpacedValueChainFlagFromConfigFile(ns, cfg.Source, &cli.StringFlag{
		Name:    "listen",
		Aliases: []string{"l"},
		Usage:   "address of the local caching proxy",
		Sources: cli.NewValueSourceChain(fromEnv("OLISTCONV_LISTEN", env.Listen)),
		Value:   DefaultListen,
	})
}

// NameSpacedValueChainFlagFromConfigFile adds namespaced and global config file
// sources to the given flag's Sources chain.
func NameSpacedValueChainFlagFromConfigFile(ns string, path string, flag *cli.StringFlag) *cli.StringFlag {
	src := yaml.YAML(ns+"."+flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	src = yaml.YAML(flag.Name, altsrc.StringSourcer(path))
	flag.Sources.Chain = append(flag.Sources.Chain, src)

	return flag
}

// pathHas reports whether target is on PATH.
func pathHas(target string) bool {
	_, err := exec.LookPath(target)
	return err == nil
}
