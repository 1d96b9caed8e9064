// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package controller drives a conversion: it loads the client list, submits
// the staged spreadsheet and delivers the converted file, keeping the ui
// state in step with each outcome.
package controller

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"sync/atomic"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/staranto/olistconv/internal/clients"
	"github.com/staranto/olistconv/internal/deliver"
	"github.com/staranto/olistconv/internal/ui"
)

// ProcessPath is the conversion endpoint.
const ProcessPath = "/processar"

// Multipart field names expected by the server.
const (
	FieldClient = "cliente_id"
	FieldFile   = "arquivo_excel"
)

// ErrBusy is carried by the Failure returned when a submission is already in
// flight.
var ErrBusy = errors.New("a conversion is already in progress")

// Controller is bound to one server base URL and one ui.State.
type Controller struct {
	client   *http.Client
	base     string
	state    *ui.State
	dest     deliver.Destination
	inflight atomic.Bool
	last     *ui.Success
}

// Option configures a Controller.
type Option func(*Controller)

// WithState uses s instead of a fresh state.
func WithState(s *ui.State) Option {
	return func(c *Controller) { c.state = s }
}

// WithDestination delivers successful conversions to d.
func WithDestination(d deliver.Destination) Option {
	return func(c *Controller) { c.dest = d }
}

// New returns a controller talking to base through client. A nil client
// uses http.DefaultClient.
func New(client *http.Client, base string, opts ...Option) *Controller {
	if client == nil {
		client = http.DefaultClient
	}
	c := &Controller{client: client, base: base}
	for _, opt := range opts {
		opt(c)
	}
	if c.state == nil {
		c.state = ui.NewState()
	}
	return c
}

// State returns the controller's ui state.
func (c *Controller) State() *ui.State {
	return c.state
}

// Last returns the most recent successful conversion.
func (c *Controller) Last() (ui.Success, bool) {
	if c.last == nil {
		return ui.Success{}, false
	}
	return *c.last, true
}

// LoadClients replaces the selector options with the server's client list,
// sorted. Failures and an empty list leave a notice in the preview unless a
// success is on display.
func (c *Controller) LoadClients(ctx context.Context) ([]clients.Client, error) {
	c.state.ClearOptions()

	list, err := clients.Fetch(ctx, c.client, c.base)
	if err != nil {
		var perr *clients.PayloadError
		if errors.As(err, &perr) {
			log.WithError(err).Error("error loading clients")
			c.state.ShowNotice(fmt.Sprintf(ui.NoticeClientsError, perr.Message))
		} else {
			log.WithError(err).Error("clients request failed")
			c.state.ShowNotice(fmt.Sprintf(ui.NoticeClientsFailed, err.Error()))
		}
		return nil, err
	}

	if len(list) == 0 {
		log.Warn("no clients returned")
		c.state.ShowNotice(ui.NoticeNoClients)
		return list, nil
	}

	clients.Sort(list)
	c.state.SetOptions(list)
	log.Debugf("loaded %d clients", len(list))
	return list, nil
}

// Submit sends the staged file for the selected client. It never retries.
func (c *Controller) Submit(ctx context.Context) ui.Result {
	if !c.inflight.CompareAndSwap(false, true) {
		return ui.Failure{Kind: ui.KindBusy, Title: ui.TitleProcessing, Message: ErrBusy.Error(), Err: ErrBusy}
	}
	defer c.inflight.Store(false)

	s := c.state
	if s.Selected == "" {
		return c.finish(ui.Failure{Kind: ui.KindValidation, Title: ui.TitleNoClient, Message: ui.MessageNoClient})
	}
	if !s.SubmitEnabled() {
		return c.finish(ui.Failure{Kind: ui.KindValidation, Title: ui.TitleNoFile, Message: ui.MessageNoFile})
	}

	s.BeginSubmit()
	defer s.EndSubmit()

	res := c.process(ctx)
	if succ, ok := res.(ui.Success); ok {
		c.last = &succ
	}
	return c.finish(res)
}

func (c *Controller) finish(r ui.Result) ui.Result {
	c.state.Apply(r)
	return r
}

func (c *Controller) process(ctx context.Context) ui.Result {
	s := c.state

	body, contentType, err := encodeForm(s.Selected, s.Staged.Name, s.Staged.ContentType(), s.Staged.Data)
	if err != nil {
		return transportFailure(err.Error(), err)
	}

	u, err := url.JoinPath(c.base, ProcessPath)
	if err != nil {
		return transportFailure(err.Error(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return transportFailure(err.Error(), err)
	}
	req.Header.Set("Content-Type", contentType)

	client := s.Selected
	if cl, ok := s.SelectedClient(); ok {
		client = fmt.Sprintf("%s (%s)", cl.Name, cl.ID)
	}
	log.Debugf("submitting %s for client %s", s.Staged.Name, client)
	resp, err := c.client.Do(req)
	if err != nil {
		log.WithError(err).Error("conversion request failed")
		return transportFailure(err.Error(), err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return transportFailure(err.Error(), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := ui.MessageServerError
		if e := gjson.GetBytes(data, "error"); e.Exists() && e.String() != "" {
			msg = e.String()
		}
		if d := gjson.GetBytes(data, "details"); d.Exists() {
			log.Debugf("conversion error details: %s", d.Raw)
		}
		log.Errorf("conversion failed with status %d: %s", resp.StatusCode, msg)
		return transportFailure(msg, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	res := ui.Success{
		Filename: Filename(resp.Header.Get("Content-Disposition")),
		Blob:     data,
	}

	if c.dest != nil {
		loc, err := c.dest.Save(ctx, res.Filename, res.Blob)
		if err != nil {
			log.WithError(err).Error("delivery failed")
			return transportFailure(err.Error(), err)
		}
		res.Location = loc
	}

	log.Debugf("converted %s into %s (%d bytes)", s.Staged.Name, res.Filename, len(res.Blob))
	return res
}

func transportFailure(msg string, err error) ui.Failure {
	return ui.Failure{Kind: ui.KindTransport, Title: ui.TitleProcessing, Message: msg, Err: err}
}

func encodeForm(clientID, filename, contentType string, data []byte) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField(FieldClient, clientID); err != nil {
		return nil, "", fmt.Errorf("failed to encode form: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     FieldFile,
		"filename": filename,
	}))
	h.Set("Content-Type", contentType)
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", fmt.Errorf("failed to encode form: %w", err)
	}

	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to encode form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}

// Filename extracts the download name from a Content-Disposition header,
// falling back to the default name.
func Filename(disposition string) string {
	if disposition == "" || !strings.Contains(disposition, "filename") {
		return ui.DefaultFilename
	}

	if _, params, err := mime.ParseMediaType(disposition); err == nil {
		if name := stripQuotes(params["filename"]); name != "" {
			return name
		}
	}

	_, after, found := strings.Cut(disposition, "filename=")
	if !found {
		return ui.DefaultFilename
	}
	if i := strings.Index(after, "filename="); i >= 0 {
		after = after[:i]
	}
	name := stripQuotes(after)
	if name == "" {
		return ui.DefaultFilename
	}
	return name
}

var quotes = strings.NewReplacer(`"`, "", "'", "")

func stripQuotes(s string) string {
	return strings.TrimSpace(quotes.Replace(s))
}
