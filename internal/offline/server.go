// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"time"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

// MessagePath receives control messages on the local proxy.
const MessagePath = "/__olistconv/message"

// Server is a local reverse proxy to Upstream whose requests pass through the
// registration's active worker. Each in-flight request counts as an attached
// client.
type Server struct {
	Registration *Registration
	Upstream     *url.URL
	Addr         string
	// Base is the transport used when no worker is active.
	Base http.RoundTripper
}

// Handler returns the proxy's http.Handler.
func (s *Server) Handler() http.Handler {
	upstream := s.Upstream
	transport := &Transport{Registration: s.Registration, Base: s.Base}

	proxy := &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(upstream)
			r.Out.Host = upstream.Host
		},
		Transport: transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			log.WithError(err).Warnf("proxy %s %s", r.Method, r.URL)
			http.Error(w, "bad gateway", http.StatusBadGateway)
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST "+MessagePath, s.handleMessage)
	mux.Handle("/", proxy)
	return mux
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16)) //nolint:mnd
	if err != nil || !gjson.ValidBytes(body) {
		http.Error(w, `{"error":"invalid message"}`, http.StatusBadRequest)
		return
	}
	msg := Message{Action: gjson.GetBytes(body, "action").String()}
	if err := s.Registration.Post(r.Context(), msg); err != nil {
		http.Error(w, `{"error":"message not delivered"}`, http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// ListenAndServe serves until ctx is done, running the registration's
// message loop alongside the listener.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second, //nolint:mnd
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := s.Registration.Run(gctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		log.Infof("serving %s on %s", s.Upstream, ln.Addr())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second) //nolint:mnd
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// PostMessage sends msg to a running proxy at base (http://host:port).
func PostMessage(ctx context.Context, client *http.Client, base string, msg Message) error {
	u, err := url.JoinPath(base, MessagePath)
	if err != nil {
		return err
	}
	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post message: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		return fmt.Errorf("message rejected: %s", resp.Status)
	}
	return nil
}
