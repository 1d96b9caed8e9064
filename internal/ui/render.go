// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/dustin/go-humanize"

	"github.com/staranto/olistconv/internal/config"
)

// Styles holds the styles used by Render. The zero value renders plain
// text.
type Styles struct {
	Title   lipgloss.Style
	Success lipgloss.Style
	Error   lipgloss.Style
	Notice  lipgloss.Style
	Muted   lipgloss.Style
}

// PlainStyles renders without any escape sequences.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{Title: plain, Success: plain, Error: plain, Notice: plain, Muted: plain}
}

// ColorStyles reads colors from the colors.* config keys.
func ColorStyles() Styles {
	success, _ := config.GetString("colors.success", "#2e7d32")
	failure, _ := config.GetString("colors.error", "#c62828")
	notice, _ := config.GetString("colors.notice", "#f6be00")
	muted, _ := config.GetString("colors.muted", "#808080")

	return Styles{
		Title:   lipgloss.NewStyle().Bold(true),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(success)),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color(failure)),
		Notice:  lipgloss.NewStyle().Foreground(lipgloss.Color(notice)),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color(muted)),
	}
}

// Render returns the text of the preview view.
func Render(v View, st Styles) string {
	switch v.Kind {
	case ViewEmpty:
		return ""
	case ViewNotice:
		return st.Notice.Render(v.Notice)
	case ViewFeedback:
		return renderFeedback(v.Feedback, st)
	default:
		return st.Muted.Render(Placeholder)
	}
}

func renderFeedback(fb Feedback, st Styles) string {
	icon, style := "✖", st.Error
	if fb.Success {
		icon, style = "✔", st.Success
	}

	lines := []string{
		style.Render(icon) + " " + st.Title.Render(fb.Title),
		"  " + fb.Message,
	}
	if fb.Success && fb.Location != "" {
		lines = append(lines, fmt.Sprintf("  %s: %s", DownloadAgain, fb.Location))
	}
	return strings.Join(lines, "\n")
}

// RenderStaged describes the staged file, or the drop prompt when nothing
// is staged.
func RenderStaged(s *State, st Styles) string {
	switch s.Area {
	case AreaSpinner:
		return st.Muted.Render("Processando...")
	case AreaFile:
		if s.Staged != nil {
			return fmt.Sprintf("%s (%s)", s.Staged.Name, humanize.Bytes(uint64(s.Staged.Size())))
		}
	}
	return st.Muted.Render("Arraste um arquivo Excel ou selecione um arquivo.")
}
