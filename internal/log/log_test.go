// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package log

import (
	"bytes"
	"testing"
	"time"

	"github.com/apex/log"
	"github.com/stretchr/testify/assert"
)

func TestCustomHandler_HandleLog(t *testing.T) {
	var buf bytes.Buffer
	h := &CustomHandler{
		Writer: &buf,
		now: func() time.Time {
			return time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
		},
	}

	entry := &log.Entry{
		Level:   log.WarnLevel,
		Message: "cache miss",
		Fields:  log.Fields{"url": "/x", "cache": "v1"},
	}

	assert.NoError(t, h.HandleLog(entry))
	assert.Equal(t, "2025-03-04 05:06:07 W cache miss cache=v1 url=/x\n", buf.String())
}

func TestInitLogger_Level(t *testing.T) {
	InitLogger("debug")
	l, ok := log.Log.(*log.Logger)
	assert.True(t, ok)
	assert.Equal(t, log.DebugLevel, l.Level)

	InitLogger("")
	assert.Equal(t, log.ErrorLevel, l.Level)

	InitLogger("warn")
	assert.Equal(t, log.WarnLevel, l.Level)
}
