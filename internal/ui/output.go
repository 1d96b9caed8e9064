// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"gopkg.in/yaml.v2"

	"github.com/staranto/olistconv/internal/clients"
	"github.com/staranto/olistconv/internal/config"
	"github.com/staranto/olistconv/internal/filters"
)

// OutputOptions controls how a client list is written.
type OutputOptions struct {
	// Format is text, json or yaml.
	Format string
	Filter string
	Titles bool
	Color  bool
}

// WriteClients filters list and writes it to w in the requested format.
func WriteClients(w io.Writer, list []clients.Client, opts OutputOptions) error {
	rows := filters.FilterDataset(clients.Dataset(list), opts.Filter)
	list = clients.FromDataset(rows)
	log.Debugf("writing %d clients as %q", len(list), opts.Format)

	switch opts.Format {
	case "json":
		out, err := json.Marshal(list)
		if err != nil {
			return fmt.Errorf("failed to encode clients: %w", err)
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	case "yaml":
		out, err := yaml.Marshal(list)
		if err != nil {
			return fmt.Errorf("failed to encode clients: %w", err)
		}
		_, err = w.Write(out)
		return err
	case "", "text":
		TableWriter(w, list, opts.Titles, opts.Color)
		return nil
	}
	return fmt.Errorf("unsupported output format: %s", opts.Format)
}

// TableWriter renders the client list as a borderless table.
func TableWriter(w io.Writer, list []clients.Client, titles bool, color bool) {
	rows := make([][]string, 0, len(list))
	for _, c := range list {
		rows = append(rows, []string{c.ID, c.Name})
	}
	WriteTable(w, []string{"ID", "Nome"}, rows, titles, color)
}

// WriteTable renders rows as a borderless table with alternating row colors.
// Headers are only shown when titles is set.
func WriteTable(w io.Writer, headers []string, rows [][]string, titles bool, color bool) {
	if len(rows) == 0 {
		return
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if color {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(lipgloss.Color(headerColor))
		evenRowStyle = evenRowStyle.Foreground(lipgloss.Color(evenColor))
		oddRowStyle = oddRowStyle.Foreground(lipgloss.Color(oddColor))
	}

	pad, _ := config.GetInt("padding", 2)

	t := table.New().
		BorderBottom(false).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			var style lipgloss.Style
			switch {
			case row == table.HeaderRow:
				style = headerStyle
			case row%2 == 0:
				style = evenRowStyle
			default:
				style = oddRowStyle
			}

			if col > 0 {
				style = style.PaddingLeft(pad)
			}

			return style
		}).
		Headers().
		Rows(rows...)

	if titles {
		// https://github.com/charmbracelet/lipgloss/issues/261
		t = t.Headers(headers...).BorderHeader(false)
	}
	fmt.Fprintln(w, t)
}

func getColors(key string) (header string, even string, odd string) {
	header, _ = config.GetString(fmt.Sprintf("%s.title", key), "#f6be00")
	even, _ = config.GetString(fmt.Sprintf("%s.even", key), "#ffffff")
	odd, _ = config.GetString(fmt.Sprintf("%s.odd", key), "#00c8f0")
	return
}
