// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package command

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/staranto/olistconv/internal/meta"
)

const bashCompletionScript = `# bash completion for olistconv
# Fallback if bash-completion is not installed
if ! declare -F _get_comp_words_by_ref >/dev/null 2>&1; then
  _get_comp_words_by_ref() {
    cur=${COMP_WORDS[COMP_CWORD]}
    prev=${COMP_WORDS[COMP_CWORD-1]}
  }
fi

_olistconv()
{
    local cur prev cmd
    COMPREPLY=()
    _get_comp_words_by_ref -n : cur prev

    local global="--server --cache-name --offline --no-offline --timeout --help --version"

    if [[ ${COMP_CWORD} -eq 1 ]]; then
        COMPREPLY=( $(compgen -W "clients convert serve skip-waiting cache completion $global" -- "$cur") )
        return 0
    fi

    cmd=${COMP_WORDS[1]}

    case "$cmd" in
        clients)
            local opts="$global --color -c --filter -f --output -o --titles -t --tldr"
            ;;
        convert)
            local opts="$global --client -C --file -F --drop --dest -d --profile --region --endpoint --color -c --tldr"
            if [[ "$prev" == "--file" || "$prev" == "-F" ]]; then
                COMPREPLY=( $(compgen -f -X '!*.xls?(x)' -- "$cur") )
                return 0
            fi
            if [[ "$cur" != -* ]]; then
                COMPREPLY=( $(compgen -f -X '!*.xls?(x)' -- "$cur") )
                return 0
            fi
            ;;
        serve|skip-waiting)
            local opts="$global --listen -l --tldr"
            ;;
        cache)
            if [[ ${COMP_CWORD} -eq 2 ]]; then
                COMPREPLY=( $(compgen -W "install activate status purge" -- "$cur") )
                return 0
            fi
            local opts="$global --entries -e --titles -t --color -c"
            ;;
        completion)
            COMPREPLY=( $(compgen -W "bash zsh" -- "$cur") )
            return 0
            ;;
        *)
            local opts="$global"
            ;;
    esac

    if [[ "$prev" == "--output" || "$prev" == "-o" ]]; then
        COMPREPLY=( $(compgen -W "text json yaml" -- "$cur") )
        return 0
    fi

    COMPREPLY=( $(compgen -W "$opts" -- "$cur") )
    return 0
}

shopt -s extglob
complete -F _olistconv olistconv
`

const zshCompletionScript = `#compdef olistconv

_olistconv() {
  local -a cmds
  cmds=(
    'clients:list the clients available for conversion'
    'convert:convert a budget spreadsheet for a client'
    'serve:run a local caching proxy in front of the server'
    'skip-waiting:activate the waiting cache worker of a running proxy'
    'cache:manage the offline cache'
    'completion:generate shell completion script'
  )

  local -a global
  global=(
    '--server[base URL of the conversion server]:url'
    '--cache-name[version tag of the offline cache]:name'
    '(--offline --no-offline)'{--offline,--no-offline}'[route requests through the offline cache]'
    '--timeout[per request timeout]:duration'
  )

  if (( CURRENT == 2 )); then
    _describe -t commands 'olistconv commands' cmds
    return
  fi

  case $words[2] in
    clients)
      _arguments -C \
        $global \
        '(-c --color)'{-c,--color}'[enable colored text]' \
        '(-f --filter)'{-f,--filter}'[filters to apply]:filters' \
        '(-o --output)'{-o,--output}'[output format]:format:(text json yaml)' \
        '(-t --titles)'{-t,--titles}'[show titles]' \
        '--tldr[show tldr page]'
      ;;
    convert)
      _arguments -C \
        $global \
        '(-C --client)'{-C,--client}'[client ID, name or CL code]:client' \
        '(-F --file)'{-F,--file}'[spreadsheet]:file:_files -g "*.xls(|x)"' \
        '--drop[require an Excel extension]' \
        '*'{-d,--dest}'[destination]:dest:_directories' \
        '--profile[AWS profile]:profile' \
        '--region[AWS region]:region' \
        '--endpoint[S3 endpoint]:url' \
        '*:file:_files -g "*.xls(|x)"'
      ;;
    serve|skip-waiting)
      _arguments -C \
        $global \
        '(-l --listen)'{-l,--listen}'[proxy address]:addr'
      ;;
    cache)
      _arguments -C \
        $global \
        '1: :((install activate status purge))' \
        '(-e --entries)'{-e,--entries}'[list stored URLs]'
      ;;
    completion)
      _arguments '1: :((bash zsh))'
      ;;
  esac
}

if ! typeset -f compdef >/dev/null 2>&1; then
  autoload -Uz compinit && compinit -i
fi
compdef _olistconv olistconv
`

func CompletionCommandAction(ctx context.Context, cmd *cli.Command) error {
	w := stdout(cmd)
	shell := ""
	if args := cmd.Args().Slice(); len(args) > 0 {
		shell = args[0]
	}
	switch shell {
	case "bash":
		fmt.Fprint(w, bashCompletionScript)
	case "zsh":
		fmt.Fprint(w, zshCompletionScript)
	default:
		// Try to detect from SHELL or print help
		sh := os.Getenv("SHELL")
		if strings.HasSuffix(sh, "zsh") {
			fmt.Fprint(w, zshCompletionScript)
		} else if strings.HasSuffix(sh, "bash") {
			fmt.Fprint(w, bashCompletionScript)
		} else {
			fmt.Fprintln(stderr(cmd), "usage: olistconv completion [bash|zsh]")
			return nil
		}
	}
	return nil
}

func CompletionCommandBuilder(meta meta.Meta) *cli.Command {
	return &cli.Command{
		Name:      "completion",
		Usage:     "generate shell completion script",
		UsageText: "olistconv completion [bash|zsh]",
		Metadata: map[string]any{
			"meta": meta,
		},
		Action: CompletionCommandAction,
	}
}
