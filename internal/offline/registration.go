// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package offline

import (
	"context"
	"errors"
	"sync"

	"github.com/apex/log"
)

// ActionSkipWaiting is the control message action that activates a waiting
// worker immediately.
const ActionSkipWaiting = "skipWaiting"

// ErrNoWaitingWorker is returned by SkipWaiting when there is nothing to
// promote.
var ErrNoWaitingWorker = errors.New("no waiting worker")

// Message is a control message sent to the registration.
type Message struct {
	Action string `json:"action"`
}

// Registration tracks the active and waiting worker versions. A newly
// installed worker waits while clients are attached to the active one, and
// takes over when the last client releases or a skipWaiting message arrives.
type Registration struct {
	mu      sync.Mutex
	active  *Worker
	waiting *Worker
	clients int

	messages chan Message
}

// NewRegistration returns an empty registration.
func NewRegistration() *Registration {
	return &Registration{messages: make(chan Message, 8)} //nolint:mnd
}

// Active returns the active worker or nil.
func (r *Registration) Active() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Waiting returns the waiting worker or nil.
func (r *Registration) Waiting() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.waiting
}

// Register installs w and then either activates it or parks it as the
// waiting worker. A failed install leaves the registration unchanged.
func (r *Registration) Register(ctx context.Context, w *Worker) error {
	if err := w.Install(ctx); err != nil {
		return err
	}
	return r.settle(ctx, w)
}

// Restore registers a worker whose cache is already on disk without
// re-installing it. It returns false when the cache is missing.
func (r *Registration) Restore(ctx context.Context, w *Worker) (bool, error) {
	if !w.MarkInstalled() {
		return false, nil
	}
	return true, r.settle(ctx, w)
}

func (r *Registration) settle(ctx context.Context, w *Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.active != nil && r.clients > 0 {
		if r.waiting != nil && r.waiting != w {
			r.waiting.markRedundant()
		}
		r.waiting = w
		log.Debugf("worker %s waiting for %d client(s)", w.Name(), r.clients)
		return nil
	}
	return r.promote(ctx, w)
}

// promote makes w active. Callers hold r.mu.
func (r *Registration) promote(ctx context.Context, w *Worker) error {
	if _, err := w.Activate(ctx); err != nil {
		return err
	}
	if r.active != nil && r.active != w {
		r.active.markRedundant()
	}
	r.active = w
	if r.waiting == w {
		r.waiting = nil
	}
	log.Infof("worker %s active", w.Name())
	return nil
}

// Claim attaches a client to the active worker. The returned release func
// detaches it; when the last client leaves a waiting worker takes over.
func (r *Registration) Claim() (release func()) {
	r.mu.Lock()
	r.clients++
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.clients--
			if r.clients == 0 && r.waiting != nil {
				if err := r.promote(context.Background(), r.waiting); err != nil {
					log.WithError(err).Warn("failed to activate waiting worker")
				}
			}
		})
	}
}

// SkipWaiting activates the waiting worker regardless of attached clients.
func (r *Registration) SkipWaiting(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.waiting == nil {
		return ErrNoWaitingWorker
	}
	return r.promote(ctx, r.waiting)
}

// Post enqueues a control message for Run.
func (r *Registration) Post(ctx context.Context, msg Message) error {
	select {
	case r.messages <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run consumes control messages until ctx is done. Unknown actions are
// ignored.
func (r *Registration) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-r.messages:
			r.handle(ctx, msg)
		}
	}
}

func (r *Registration) handle(ctx context.Context, msg Message) {
	switch msg.Action {
	case ActionSkipWaiting:
		if err := r.SkipWaiting(ctx); err != nil {
			log.WithError(err).Debug("skipWaiting ignored")
		}
	default:
		log.Debugf("ignoring message with action %q", msg.Action)
	}
}
