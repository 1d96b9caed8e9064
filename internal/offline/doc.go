// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: MIT

// Package offline implements the offline cache worker: a versioned on-disk
// response cache with an install/activate/fetch lifecycle, a registration
// that rolls worker versions over, an http.RoundTripper that serves requests
// cache-first, and a local reverse proxy exposing all of it to a browser.
package offline
