// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package clients

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	list, err := Parse([]byte(`{"clientes":[{"ID":"7","Nome":"CL7 Loja"},{"ID":12,"Nome":"Avulso"}]}`))
	require.NoError(t, err)
	assert.Equal(t, []Client{{ID: "7", Name: "CL7 Loja"}, {ID: "12", Name: "Avulso"}}, list)

	list, err = Parse([]byte(`{"clientes":[]}`))
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = Parse([]byte(`{"error":"planilha indisponível"}`))
	var pe *PayloadError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "planilha indisponível", pe.Message)

	_, err = Parse([]byte(`<html>`))
	assert.Error(t, err)
}

func TestParse_FalsyErrorIgnored(t *testing.T) {
	for _, e := range []string{`""`, `null`, `false`, `0`} {
		t.Run(e, func(t *testing.T) {
			list, err := Parse([]byte(`{"error":` + e + `,"clientes":[{"ID":1,"Nome":"CL1 A"}]}`))
			require.NoError(t, err)
			assert.Equal(t, []Client{{ID: "1", Name: "CL1 A"}}, list)
		})
	}

	_, err := Parse([]byte(`{"error":{"code":3}}`))
	var pe *PayloadError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, `{"code":3}`, pe.Message)
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    []Client
		wantErr string
		apiErr  bool
	}{
		{
			name:   "ok",
			status: http.StatusOK,
			body:   `{"clientes":[{"ID":"1","Nome":"CL1 Padaria"}]}`,
			want:   []Client{{ID: "1", Name: "CL1 Padaria"}},
		},
		{
			name:    "server error with message",
			status:  http.StatusInternalServerError,
			body:    `{"error":"Invalid client file structure in Google Sheet","details":"trace"}`,
			wantErr: "Invalid client file structure in Google Sheet",
			apiErr:  true,
		},
		{
			name:    "server error without body",
			status:  http.StatusBadGateway,
			body:    ``,
			wantErr: "Erro ao carregar clientes do servidor.",
			apiErr:  true,
		},
		{
			name:    "error payload on 200",
			status:  http.StatusOK,
			body:    `{"error":"sem acesso"}`,
			wantErr: "sem acesso",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, Path, r.URL.Path)
				assert.Equal(t, http.MethodGet, r.Method)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			got, err := Fetch(context.Background(), srv.Client(), srv.URL)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr, err.Error())
				var ae *APIError
				assert.Equal(t, tt.apiErr, errors.As(err, &ae))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	list := []Client{{ID: "1", Name: "CL1"}, {ID: "2", Name: "B"}}
	assert.Equal(t, list, FromDataset(Dataset(list)))
}
