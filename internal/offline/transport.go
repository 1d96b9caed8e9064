// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"net/http"
	"time"
)

// Transport routes every request through the registration's active worker.
// With no active worker, requests go straight to Base.
type Transport struct {
	Registration *Registration
	Base         http.RoundTripper
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Registration != nil {
		if w := t.Registration.Active(); w != nil {
			release := t.Registration.Claim()
			defer release()
			return w.Fetch(req)
		}
	}
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req)
}

// NewClient returns an http.Client whose requests pass through reg. A zero
// timeout means no timeout.
func NewClient(reg *Registration, timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &Transport{Registration: reg},
		Timeout:   timeout,
	}
}
