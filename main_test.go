// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/olistconv/internal/config"
)

func TestMangleArguments(t *testing.T) {
	_, err := config.Load("testdata/sets.yaml")
	require.NoError(t, err)

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "defaults set inserted",
			args: []string{"olistconv", "convert", "a.xlsx"},
			want: []string{"olistconv", "convert", "--dest", "./saida", "a.xlsx"},
		},
		{
			name: "named set replaces defaults",
			args: []string{"olistconv", "convert", "@sul", "a.xlsx"},
			want: []string{"olistconv", "convert", "--client", "7", "--dest", "s3://orcamentos/sul", "a.xlsx"},
		},
		{
			name: "no set for command",
			args: []string{"olistconv", "clients", "-o", "json"},
			want: []string{"olistconv", "clients", "-o", "json"},
		},
		{
			name: "help untouched",
			args: []string{"olistconv", "convert", "--help"},
			want: []string{"olistconv", "convert", "--help"},
		},
		{
			name: "root flag first",
			args: []string{"olistconv", "--server", "http://x", "clients"},
			want: []string{"olistconv", "--server", "http://x", "clients"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, mangleArguments(tt.args))
		})
	}
}
