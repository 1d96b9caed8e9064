// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package offline

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fetchBody(t *testing.T, w *Worker, method, url string) (*http.Response, string) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	require.NoError(t, err)
	resp, err := w.Fetch(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func TestNewWorker(t *testing.T) {
	s := newTestStorage(t)

	w, err := NewWorker(s, "http://localhost:5000/some/path")
	require.NoError(t, err)
	assert.Equal(t, "conversor-olist-cache-v1", w.Name())
	assert.Equal(t, "http://localhost:5000", w.Origin().String())
	assert.Equal(t, StateParsed, w.State())
	assert.Equal(t, "http://localhost:5000/static/css/style.css", w.ManifestURLs()[1])

	_, err = NewWorker(s, "localhost")
	assert.Error(t, err)

	_, err = NewWorker(s, "http://localhost", WithCacheName("../x"))
	assert.ErrorIs(t, err, ErrInvalidCacheName)
}

func TestWorker_InstallThenServeFromCache(t *testing.T) {
	o := newOrigin(t)
	w, err := NewWorker(newTestStorage(t), o.URL)
	require.NoError(t, err)

	require.NoError(t, w.Install(context.Background()))
	assert.Equal(t, StateInstalled, w.State())
	for _, p := range DefaultManifest {
		assert.Equal(t, 1, o.Hits(p), p)
	}

	resp, body := fetchBody(t, w, http.MethodGet, o.URL+"/static/css/style.css")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GET /static/css/style.css v1", body)
	assert.Equal(t, 1, o.Hits("/static/css/style.css"), "served without a network call")
}

func TestWorker_InstallFailure(t *testing.T) {
	o := newOrigin(t)
	o.SetStatus("/static/icons/icon-512x512.png", http.StatusInternalServerError)

	s := newTestStorage(t)
	w, err := NewWorker(s, o.URL)
	require.NoError(t, err)

	err = w.Install(context.Background())
	require.ErrorIs(t, err, ErrInstallFailed)
	assert.Equal(t, StateRedundant, w.State())
	assert.False(t, s.Has(w.Name()), "a failed first install leaves no cache behind")
	assert.False(t, w.MarkInstalled())

	c, err := s.Open(w.Name())
	require.NoError(t, err)
	entries, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorker_ActivateDeletesOtherVersions(t *testing.T) {
	s := newTestStorage(t)
	for _, name := range []string{"v1", "v2-current"} {
		_, err := s.Open(name)
		require.NoError(t, err)
	}

	w, err := NewWorker(s, "http://localhost:5000", WithCacheName("v2-current"))
	require.NoError(t, err)

	deleted, err := w.Activate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"v1"}, deleted)
	assert.Equal(t, StateActivated, w.State())

	names, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"v2-current"}, names)
}

func TestWorker_QueryStringNeverStored(t *testing.T) {
	o := newOrigin(t)
	w := newOpenWorker(t, o)

	resp, body := fetchBody(t, w, http.MethodGet, o.URL+"/data?x=1")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "GET /data?x=1 v1", body)

	_, _ = fetchBody(t, w, http.MethodGet, o.URL+"/data?x=1")
	assert.Equal(t, 2, o.Hits("/data"))

	c, err := w.storage.Open(w.Name())
	require.NoError(t, err)
	entries, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWorker_CacheWinsOverNetwork(t *testing.T) {
	o := newOrigin(t)
	w := newOpenWorker(t, o)

	_, body := fetchBody(t, w, http.MethodGet, o.URL+"/clientes")
	assert.Equal(t, "GET /clientes v1", body)

	o.SetVersion("2")
	resp, body := fetchBody(t, w, http.MethodGet, o.URL+"/clientes")
	assert.Equal(t, "GET /clientes v1", body, "stored entries never revalidate")
	assert.Equal(t, "1", resp.Header.Get("X-Asset-Version"))
	assert.Equal(t, 1, o.Hits("/clientes"))
}

func TestWorker_NotStored(t *testing.T) {
	o := newOrigin(t)
	o.SetStatus("/missing", http.StatusNotFound)

	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "elsewhere")
	}))
	defer other.Close()

	w := newOpenWorker(t, o)

	tests := []struct {
		name   string
		method string
		url    string
	}{
		{"non-200", http.MethodGet, o.URL + "/missing"},
		{"post", http.MethodPost, o.URL + "/processar"},
		{"cross-origin", http.MethodGet, other.URL + "/static/css/style.css"},
		{"empty query", http.MethodGet, o.URL + "/data?"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _ = fetchBody(t, w, tt.method, tt.url)
		})
	}

	c, err := w.storage.Open(w.Name())
	require.NoError(t, err)
	entries, err := c.Keys()
	require.NoError(t, err)
	assert.Empty(t, entries)

	_, _ = fetchBody(t, w, http.MethodGet, o.URL+"/missing")
	assert.Equal(t, 2, o.Hits("/missing"))
}

func TestWorker_LiveResponseReturnedWhenStored(t *testing.T) {
	o := newOrigin(t)
	w := newOpenWorker(t, o)

	resp, body := fetchBody(t, w, http.MethodGet, o.URL+"/static/js/script.js")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.HasPrefix(body, "GET /static/js/script.js"))
	assert.Equal(t, 1, o.Hits("/static/js/script.js"))
}

func TestWorker_FetchWithoutCacheNeverCreatesIt(t *testing.T) {
	o := newOrigin(t)
	s := newTestStorage(t)
	w, err := NewWorker(s, o.URL)
	require.NoError(t, err)

	_, body := fetchBody(t, w, http.MethodGet, o.URL+"/static/css/style.css")
	assert.Equal(t, "GET /static/css/style.css v1", body)
	assert.False(t, s.Has(w.Name()))

	_, _ = fetchBody(t, w, http.MethodGet, o.URL+"/static/css/style.css")
	assert.Equal(t, 2, o.Hits("/static/css/style.css"))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "activated", StateActivated.String())
	assert.Equal(t, "State(42)", State(42).String())
}
