// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{"jammed ok", JammedFlagValidator, "3", false},
		{"jammed flag", JammedFlagValidator, "--dest", true},
		{"output text", OutputValidator, "text", false},
		{"output yaml", OutputValidator, "yaml", false},
		{"output raw", OutputValidator, "raw", true},
		{"server http", ServerURLValidator, "http://localhost:5000", false},
		{"server https", ServerURLValidator, "https://conversor.example.com", false},
		{"server relative", ServerURLValidator, "localhost:5000", true},
		{"server ftp", ServerURLValidator, "ftp://host", true},
		{"dest dir", DestValidator, "./out", false},
		{"dest s3", DestValidator, "s3://bucket/out", false},
		{"dest bad s3", DestValidator, "s3:///out", true},
		{"cache name", CacheNameValidator, "conversor-olist-cache-v2", false},
		{"cache name slash", CacheNameValidator, "a/b", true},
		{"cache name dots", CacheNameValidator, "..", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
