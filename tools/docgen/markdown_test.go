// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "# olistconv convert\n\n" +
	"## Short description\n\n" +
	"Convert a budget spreadsheet\nfor one client.\n\n" +
	"## Quick examples\n\n" +
	"```sh\n" +
	"# Convert for client 7\n" +
	"olistconv convert --client 7   orcamento.xlsx\n\n" +
	"olistconv convert --help\n" +
	"```\n"

func TestParsePage(t *testing.T) {
	p := parsePage(sample)
	assert.Equal(t, "olistconv convert", p.Title)
	assert.Equal(t, "Convert a budget spreadsheet for one client.", p.Short)
	require.Len(t, p.Examples, 2)
	assert.Equal(t, example{Desc: "Convert for client 7", Cmd: "olistconv convert --client 7 orcamento.xlsx"}, p.Examples[0])
	assert.Equal(t, "Example", p.Examples[1].Desc)
}

func TestBuildTLDR(t *testing.T) {
	out := buildTLDR("convert", parsePage(sample))
	assert.Contains(t, out, "# olistconv-convert")
	assert.Contains(t, out, "> Convert a budget spreadsheet for one client.")
	assert.Contains(t, out, "- Convert for client 7:\n\n`olistconv convert --client 7 orcamento.xlsx`")

	out = buildTLDR("serve", parsePage("# olistconv serve\n"))
	assert.Contains(t, out, "> olistconv serve.")
	assert.Contains(t, out, "`olistconv serve --help`")
}
