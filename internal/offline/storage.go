// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/apex/log"
	"golang.org/x/sync/errgroup"

	"github.com/staranto/olistconv/internal/cacheutil"
	"github.com/staranto/olistconv/internal/config"
)

// ErrInvalidCacheName is returned for cache names that cannot be used as a
// single directory component.
var ErrInvalidCacheName = errors.New("invalid cache name")

// Storage is the set of named caches living beneath one directory. Each cache
// name is a directory; each entry is one file named after the hashed URL.
type Storage struct {
	mu  sync.RWMutex
	dir string
}

// NewStorage returns a Storage rooted at dir, creating it if needed.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to create offline cache directory: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// DefaultStorage returns the Storage under the olistconv cache dir that e
// resolves to.
func DefaultStorage(e config.Env) (*Storage, error) {
	dir, err := cacheutil.SubDir(e, "offline")
	if err != nil {
		return nil, err
	}
	return NewStorage(dir)
}

// Dir returns the root directory.
func (s *Storage) Dir() string {
	return s.dir
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidCacheName, name)
	}
	return nil
}

// Open returns the named cache, creating it if it does not exist.
func (s *Storage) Open(name string) (*Cache, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, name)
	if err := os.MkdirAll(dir, 0o755); err != nil { //nolint:mnd
		return nil, fmt.Errorf("failed to open cache %s: %w", name, err)
	}
	return &Cache{name: name, dir: dir, mu: &s.mu}, nil
}

// Lookup returns the named cache only when it already exists. Unlike Open
// it never creates the directory.
func (s *Storage) Lookup(name string) (*Cache, bool) {
	if validName(name) != nil {
		return nil, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	dir := filepath.Join(s.dir, name)
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return nil, false
	}
	return &Cache{name: name, dir: dir, mu: &s.mu}, true
}

// Has reports whether the named cache exists.
func (s *Storage) Has(name string) bool {
	if validName(name) != nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, err := os.Stat(filepath.Join(s.dir, name))
	return err == nil && info.IsDir()
}

// Keys returns the names of every cache, sorted.
func (s *Storage) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list caches: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named cache and reports whether it existed.
func (s *Storage) Delete(name string) (bool, error) {
	if err := validName(name); err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	dir := filepath.Join(s.dir, name)
	if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err := os.RemoveAll(dir); err != nil {
		return false, fmt.Errorf("failed to delete cache %s: %w", name, err)
	}
	return true, nil
}

// Entry describes a stored response.
// Key is the clear-text request URL; EncodedKey is the hashed filename.
type Entry struct {
	Key        string
	EncodedKey string
	Path       string
	Size       int64
}

// Cache is one named cache. It shares its lock with the owning Storage so a
// cache being deleted cannot be written to concurrently.
type Cache struct {
	name string
	dir  string
	mu   *sync.RWMutex
}

// Name returns the cache name (the version tag).
func (c *Cache) Name() string {
	return c.name
}

// requestKey is the cache key for req: its URL without fragment.
func requestKey(req *http.Request) string {
	u := *req.URL
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// cacheable is true for requests the cache can match or store.
func cacheable(req *http.Request) bool {
	return req.Method == http.MethodGet || req.Method == ""
}

// Match returns the stored response for req by exact URL. Only GET requests
// ever match.
func (c *Cache) Match(req *http.Request) (*http.Response, bool, error) {
	if !cacheable(req) {
		return nil, false, nil
	}
	key := requestKey(req)
	p := filepath.Join(c.dir, cacheutil.EncodeKey(key))

	c.mu.RLock()
	raw, err := os.ReadFile(p)
	c.mu.RUnlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cache entry: %w", err)
	}

	storedKey, resp, err := decodeEntry(raw, req)
	if err != nil {
		return nil, false, err
	}
	// md5 collisions are not worth handling beyond refusing the hit.
	if storedKey != key {
		log.Warnf("cache key mismatch for %s", key)
		return nil, false, nil
	}
	return resp, true, nil
}

// Put stores resp under req's URL. It consumes resp.Body; callers that need
// the body afterwards pass a copy.
func (c *Cache) Put(req *http.Request, resp *http.Response) error {
	if !cacheable(req) {
		return fmt.Errorf("cannot cache %s request", req.Method)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	key := requestKey(req)
	raw, err := encodeEntry(key, resp, body)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	return writeAtomic(filepath.Join(c.dir, cacheutil.EncodeKey(key)), raw)
}

// Delete removes the entry for req, reporting whether there was one.
func (c *Cache) Delete(req *http.Request) (bool, error) {
	p := filepath.Join(c.dir, cacheutil.EncodeKey(requestKey(req)))
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.Remove(p); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return true, nil
}

// Keys lists the entries in the cache sorted by URL.
func (c *Cache) Keys() ([]Entry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	files, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache %s: %w", c.name, err)
	}
	var entries []Entry
	for _, f := range files {
		if f.IsDir() || strings.HasPrefix(f.Name(), ".") {
			continue
		}
		p := filepath.Join(c.dir, f.Name())
		key, size, err := readEntryKey(p)
		if err != nil {
			log.WithError(err).Warnf("skipping unreadable cache entry %s", p)
			continue
		}
		entries = append(entries, Entry{Key: key, EncodedKey: f.Name(), Path: p, Size: size})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Key < entries[j].Key })
	return entries, nil
}

// AddAll fetches every URL with client and stores the responses. Either every
// response is a 2xx and all are stored, or nothing is stored and the first
// failure is returned.
func (c *Cache) AddAll(ctx context.Context, client *http.Client, urls []string) error {
	type fetched struct {
		req  *http.Request
		resp *http.Response
		body []byte
	}
	results := make([]fetched, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	for i, u := range urls {
		g.Go(func() error {
			req, err := http.NewRequestWithContext(gctx, http.MethodGet, u, nil)
			if err != nil {
				return fmt.Errorf("failed to create request for %s: %w", u, err)
			}
			resp, err := client.Do(req)
			if err != nil {
				return fmt.Errorf("failed to fetch %s: %w", u, err)
			}
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode > 299 {
				return fmt.Errorf("failed to fetch %s: %s", u, resp.Status)
			}
			body, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", u, err)
			}
			results[i] = fetched{req: req, resp: resp, body: body}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, f := range results {
		f.resp.Body = io.NopCloser(bytes.NewReader(f.body))
		if err := c.Put(f.req, f.resp); err != nil {
			return err
		}
	}
	return nil
}

// encodeEntry renders the key line followed by the HTTP/1.1 wire form of the
// response.
func encodeEntry(key string, resp *http.Response, body []byte) ([]byte, error) {
	stored := &http.Response{
		Status:        resp.Status,
		StatusCode:    resp.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        resp.Header.Clone(),
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: int64(len(body)),
	}
	if stored.Header == nil {
		stored.Header = http.Header{}
	}
	stored.Header.Del("Transfer-Encoding")

	var buf bytes.Buffer
	buf.WriteString(key)
	buf.WriteByte('\n')
	if err := stored.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode response: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeEntry parses what encodeEntry wrote. The body is fully buffered so
// the file handle is not held.
func decodeEntry(raw []byte, req *http.Request) (string, *http.Response, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	key, err := br.ReadString('\n')
	if err != nil {
		return "", nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	resp, err := http.ReadResponse(br, req)
	if err != nil {
		return "", nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return "", nil, fmt.Errorf("corrupt cache entry: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return strings.TrimSuffix(key, "\n"), resp, nil
}

func readEntryKey(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return "", 0, err
	}
	key, err := bufio.NewReader(f).ReadString('\n')
	if err != nil {
		return "", 0, err
	}
	return strings.TrimSuffix(key, "\n"), info.Size(), nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
	if err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}
