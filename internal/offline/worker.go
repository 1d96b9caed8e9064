// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/apex/log"
)

// DefaultManifest is the set of core assets pre-cached on install.
var DefaultManifest = []string{
	"/",
	"/static/css/style.css",
	"/static/js/script.js",
	"/static/icons/icon-192x192.png",
	"/static/icons/icon-512x512.png",
	"/static/manifest.json",
}

// ErrInstallFailed wraps any failure while pre-caching the manifest.
var ErrInstallFailed = errors.New("install failed")

// State is a worker's lifecycle position.
type State int

const (
	StateParsed State = iota
	StateInstalling
	StateInstalled
	StateActivating
	StateActivated
	StateRedundant
)

func (s State) String() string {
	switch s {
	case StateParsed:
		return "parsed"
	case StateInstalling:
		return "installing"
	case StateInstalled:
		return "installed"
	case StateActivating:
		return "activating"
	case StateActivated:
		return "activated"
	case StateRedundant:
		return "redundant"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Worker is one version of the offline cache worker. Its cache name is its
// version tag.
type Worker struct {
	name     string
	origin   *url.URL
	manifest []string
	storage  *Storage
	network  http.RoundTripper

	mu    sync.Mutex
	state State
}

// Option customizes a Worker.
type Option func(*Worker)

// WithCacheName sets the version tag. Defaults to "conversor-olist-cache-v1".
func WithCacheName(name string) Option {
	return func(w *Worker) { w.name = name }
}

// WithManifest replaces DefaultManifest. Paths are resolved against the
// origin.
func WithManifest(paths []string) Option {
	return func(w *Worker) { w.manifest = append([]string(nil), paths...) }
}

// WithNetwork sets the transport used for real network fetches. Defaults to
// http.DefaultTransport.
func WithNetwork(rt http.RoundTripper) Option {
	return func(w *Worker) { w.network = rt }
}

// NewWorker returns a worker for origin (scheme://host[:port]) backed by
// storage.
func NewWorker(storage *Storage, origin string, opts ...Option) (*Worker, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("failed to parse origin %q: %w", origin, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("origin %q must be absolute", origin)
	}

	w := &Worker{
		name:     "conversor-olist-cache-v1",
		origin:   &url.URL{Scheme: u.Scheme, Host: u.Host},
		manifest: append([]string(nil), DefaultManifest...),
		storage:  storage,
		network:  http.DefaultTransport,
	}
	for _, opt := range opts {
		opt(w)
	}
	if err := validName(w.name); err != nil {
		return nil, err
	}
	return w, nil
}

// Name returns the worker's cache name.
func (w *Worker) Name() string {
	return w.name
}

// Origin returns the origin the worker serves.
func (w *Worker) Origin() *url.URL {
	u := *w.origin
	return &u
}

// State returns the current lifecycle state.
func (w *Worker) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

func (w *Worker) setState(s State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	log.Debugf("worker %s: %s", w.name, s)
}

// ManifestURLs returns the manifest resolved against the origin.
func (w *Worker) ManifestURLs() []string {
	urls := make([]string, 0, len(w.manifest))
	for _, p := range w.manifest {
		ref, err := url.Parse(p)
		if err != nil {
			urls = append(urls, p)
			continue
		}
		urls = append(urls, w.origin.ResolveReference(ref).String())
	}
	return urls
}

// Install opens the worker's cache and pre-populates it with the manifest.
// Any single failure fails the whole install.
func (w *Worker) Install(ctx context.Context) error {
	w.setState(StateInstalling)

	existed := w.storage.Has(w.name)
	cache, err := w.storage.Open(w.name)
	if err != nil {
		w.setState(StateRedundant)
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}
	log.Debugf("cache %s opened", w.name)

	client := &http.Client{Transport: w.network}
	if err := cache.AddAll(ctx, client, w.ManifestURLs()); err != nil {
		if !existed {
			if _, derr := w.storage.Delete(w.name); derr != nil {
				log.WithError(derr).Warnf("failed to remove cache %s", w.name)
			}
		}
		w.setState(StateRedundant)
		return fmt.Errorf("%w: %w", ErrInstallFailed, err)
	}

	w.setState(StateInstalled)
	return nil
}

// Activate deletes every cache whose name is not this worker's and returns
// the deleted names.
func (w *Worker) Activate(ctx context.Context) ([]string, error) {
	w.setState(StateActivating)

	names, err := w.storage.Keys()
	if err != nil {
		return nil, err
	}

	var deleted []string
	for _, name := range names {
		if name == w.name {
			continue
		}
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		if _, err := w.storage.Delete(name); err != nil {
			return deleted, err
		}
		log.Debugf("deleted stale cache %s", name)
		deleted = append(deleted, name)
	}

	w.setState(StateActivated)
	return deleted, nil
}

// MarkInstalled records that the worker's cache is already present, for
// restoring a previously installed worker without re-fetching the manifest.
func (w *Worker) MarkInstalled() bool {
	if !w.storage.Has(w.name) {
		return false
	}
	w.setState(StateInstalled)
	return true
}

func (w *Worker) markRedundant() {
	w.setState(StateRedundant)
}

// sameOrigin reports whether u is served by the worker's origin. Only such
// responses are basic (non-opaque) and eligible for caching.
func (w *Worker) sameOrigin(u *url.URL) bool {
	return strings.EqualFold(u.Scheme, w.origin.Scheme) && strings.EqualFold(u.Host, w.origin.Host)
}

// Fetch serves req cache-first. A stored response is returned without
// touching the network. On a miss the network response is returned, and a
// copy is stored when it is a same-origin 200 to a URL without a query
// string. A redundant worker, or one whose cache was deleted, only proxies
// to the network.
func (w *Worker) Fetch(req *http.Request) (*http.Response, error) {
	var cache *Cache
	if w.State() != StateRedundant {
		cache, _ = w.storage.Lookup(w.name)
	}
	if cache == nil {
		log.Debugf("cache %s gone, fetching %s from network", w.name, req.URL)
		return w.network.RoundTrip(req)
	}

	if resp, ok, err := cache.Match(req); err != nil {
		log.WithError(err).Warnf("cache match failed for %s", req.URL)
	} else if ok {
		log.Debugf("cache hit: %s", req.URL)
		return resp, nil
	}

	resp, err := w.network.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if !w.storable(req, resp) {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	stored := *resp
	stored.Body = io.NopCloser(bytes.NewReader(body))
	if err := cache.Put(req, &stored); err != nil {
		log.WithError(err).Warnf("failed to cache %s", req.URL)
	} else {
		log.Debugf("cached: %s", req.URL)
	}

	return resp, nil
}

func (w *Worker) storable(req *http.Request, resp *http.Response) bool {
	if resp == nil || resp.StatusCode != http.StatusOK {
		return false
	}
	if !cacheable(req) || !w.sameOrigin(req.URL) {
		return false
	}
	return req.URL.RawQuery == "" && !req.URL.ForceQuery
}
