// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package clients

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/apex/log"
	"github.com/tidwall/gjson"
)

// Path is the client list endpoint.
const Path = "/clientes"

// fallbackMessage is shown when a failed response carries no error text.
const fallbackMessage = "Erro ao carregar clientes do servidor."

// Client is one selectable client. ID is always a string even when the
// server sends a number.
type Client struct {
	ID   string `json:"ID" yaml:"ID"`
	Name string `json:"Nome" yaml:"Nome"`
}

// APIError is a non-2xx answer from the clients endpoint.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// PayloadError is a 2xx answer whose body carries an error field.
type PayloadError struct {
	Message string
}

func (e *PayloadError) Error() string {
	return e.Message
}

// Fetch GETs the client list from base. The list is returned unsorted.
func Fetch(ctx context.Context, client *http.Client, base string) ([]Client, error) {
	u, err := url.JoinPath(base, Path)
	if err != nil {
		return nil, fmt.Errorf("failed to build clients url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := fallbackMessage
		if m, ok := errorMessage(gjson.GetBytes(body, "error")); ok {
			msg = m
		}
		if d := gjson.GetBytes(body, "details"); d.Exists() {
			log.Debugf("clients error details: %s", d.Raw)
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return Parse(body)
}

// Parse decodes a clients payload: {"clientes":[{"ID":..,"Nome":..}]} or
// {"error":".."}.
func Parse(body []byte) ([]Client, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("invalid clients payload")
	}
	doc := gjson.ParseBytes(body)

	if msg, ok := errorMessage(doc.Get("error")); ok {
		return nil, &PayloadError{Message: msg}
	}

	var list []Client
	doc.Get("clientes").ForEach(func(_, item gjson.Result) bool {
		list = append(list, Client{
			ID:   item.Get("ID").String(),
			Name: item.Get("Nome").String(),
		})
		return true
	})
	return list, nil
}

// errorMessage reports whether an error field marks the payload as failed.
// Falsy values (missing, null, false, 0, "") do not.
func errorMessage(e gjson.Result) (string, bool) {
	switch e.Type {
	case gjson.Null, gjson.False:
		return "", false
	case gjson.String:
		return e.Str, e.Str != ""
	case gjson.Number:
		return e.Raw, e.Num != 0
	}
	return e.String(), true
}

// Dataset converts clients into rows keyed by their wire names, for
// filtering and output.
func Dataset(list []Client) []map[string]interface{} {
	rows := make([]map[string]interface{}, 0, len(list))
	for _, c := range list {
		rows = append(rows, map[string]interface{}{"ID": c.ID, "Nome": c.Name})
	}
	return rows
}

// FromDataset is the inverse of Dataset.
func FromDataset(rows []map[string]interface{}) []Client {
	list := make([]Client, 0, len(rows))
	for _, r := range rows {
		id, _ := r["ID"].(string)
		name, _ := r["Nome"].(string)
		list = append(list, Client{ID: id, Name: name})
	}
	return list
}
