// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package offline

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// origin is a fake conversion server that counts hits per path.
type origin struct {
	*httptest.Server

	mu      sync.Mutex
	hits    map[string]int
	status  map[string]int
	version string
}

func newOrigin(t *testing.T) *origin {
	t.Helper()
	o := &origin{hits: map[string]int{}, status: map[string]int{}, version: "1"}
	o.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		o.mu.Lock()
		o.hits[r.URL.Path]++
		status, ok := o.status[r.URL.Path]
		version := o.version
		o.mu.Unlock()
		if !ok {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("X-Asset-Version", version)
		w.WriteHeader(status)
		fmt.Fprintf(w, "%s %s v%s", r.Method, r.URL.RequestURI(), version)
	}))
	t.Cleanup(o.Close)
	return o
}

func (o *origin) Hits(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.hits[path]
}

func (o *origin) SetStatus(path string, status int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.status[path] = status
}

func (o *origin) SetVersion(v string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.version = v
}

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(t.TempDir())
	require.NoError(t, err)
	return s
}

// newOpenWorker returns a worker for o whose cache directory exists but holds
// no entries, as after installing an empty manifest.
func newOpenWorker(t *testing.T, o *origin) *Worker {
	t.Helper()
	w, err := NewWorker(newTestStorage(t), o.URL)
	require.NoError(t, err)
	_, err = w.storage.Open(w.Name())
	require.NoError(t, err)
	return w
}
