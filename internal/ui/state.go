// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package ui

import (
	"fmt"

	"github.com/apex/log"

	"github.com/staranto/olistconv/internal/clients"
	"github.com/staranto/olistconv/internal/upload"
)

// ViewKind selects what the preview area shows.
type ViewKind int

const (
	ViewPlaceholder ViewKind = iota
	ViewNotice
	ViewFeedback
	ViewEmpty
)

// UploadArea selects what the upload area shows.
type UploadArea int

const (
	AreaPrompt UploadArea = iota
	AreaFile
	AreaSpinner
)

// Feedback is a titled success or error message.
type Feedback struct {
	Success bool
	Title   string
	Message string
	// Filename and Location back the "download again" link of a success.
	Filename string
	Location string
}

// View is the content of the preview area.
type View struct {
	Kind     ViewKind
	Notice   string
	Feedback Feedback
}

// IsSuccess reports whether the view is showing a successful conversion.
func (v View) IsSuccess() bool {
	return v.Kind == ViewFeedback && v.Feedback.Success
}

// State is the converter's interface state. It is not safe for concurrent
// use.
type State struct {
	Staged     *upload.File
	Options    []clients.Client
	Selected   string
	Area       UploadArea
	DragActive bool
	Busy       bool
	Preview    View
}

// NewState returns an empty state showing the placeholder.
func NewState() *State {
	return &State{}
}

// SubmitEnabled reports whether the convert action is available.
func (s *State) SubmitEnabled() bool {
	return s.Staged != nil && !s.Busy
}

// Select stages f, replacing any staged file. No extension check is made.
func (s *State) Select(f upload.File) {
	log.Debugf("staging %s (%d bytes)", f.Name, f.Size())
	s.Staged = &f
	s.Area = AreaFile
	s.DragActive = false
	s.Preview = View{Kind: ViewPlaceholder}
}

// Drop handles files dropped on the upload area. Only the first file is
// considered and dropping nothing is a no-op. A non spreadsheet resets the
// upload area, shows an error and is returned as a KindInvalidInput Failure.
func (s *State) Drop(files ...upload.File) error {
	s.DragActive = false
	if len(files) == 0 {
		return nil
	}

	f := files[0]
	if !upload.IsExcel(f.Name) {
		log.Debugf("rejecting dropped file %s", f.Name)
		failure := Failure{
			Kind:    KindInvalidInput,
			Title:   TitleInvalidFile,
			Message: MessageInvalidFile,
			Err:     fmt.Errorf("%w: %s", upload.ErrNotExcel, f.Name),
		}
		s.ResetUpload()
		s.Apply(failure)
		return failure
	}

	s.Select(f)
	return nil
}

// Remove clears the staged file and restores the placeholder.
func (s *State) Remove() {
	s.ResetUpload()
	s.Preview = View{Kind: ViewPlaceholder}
}

// ResetUpload empties the upload area. The preview is left alone so a
// result stays visible after a submission.
func (s *State) ResetUpload() {
	s.Staged = nil
	s.Area = AreaPrompt
	s.DragActive = false
}

// ResetSelector returns the client selector to unselected.
func (s *State) ResetSelector() {
	s.Selected = ""
}

// DragOver highlights the upload area when no file is staged.
func (s *State) DragOver() {
	if s.Staged == nil {
		s.DragActive = true
	}
}

// DragLeave removes the highlight.
func (s *State) DragLeave() {
	s.DragActive = false
}

// SetOptions replaces the client selector options.
func (s *State) SetOptions(list []clients.Client) {
	s.Options = list
	if s.Selected != "" && !s.hasOption(s.Selected) {
		s.Selected = ""
	}
}

// ClearOptions removes every client option and the selection.
func (s *State) ClearOptions() {
	s.Options = nil
	s.Selected = ""
}

// SelectClient selects the client with the given ID. It reports false
// when options are loaded and none matches.
func (s *State) SelectClient(id string) bool {
	if len(s.Options) > 0 && !s.hasOption(id) {
		return false
	}
	s.Selected = id
	return true
}

// SelectedClient returns the selected client record when it is one of the
// options.
func (s *State) SelectedClient() (clients.Client, bool) {
	for _, c := range s.Options {
		if c.ID == s.Selected {
			return c, true
		}
	}
	return clients.Client{}, false
}

func (s *State) hasOption(id string) bool {
	for _, c := range s.Options {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ShowNotice writes an inline notice unless a success is on display.
func (s *State) ShowNotice(msg string) {
	if s.Preview.IsSuccess() {
		log.Debugf("notice suppressed: %s", msg)
		return
	}
	s.Preview = View{Kind: ViewNotice, Notice: msg}
}

// ShowFeedback replaces the preview with fb.
func (s *State) ShowFeedback(fb Feedback) {
	s.Preview = View{Kind: ViewFeedback, Feedback: fb}
}

// BeginSubmit enters the busy state.
func (s *State) BeginSubmit() {
	s.Busy = true
	s.Area = AreaSpinner
	s.Preview = View{Kind: ViewEmpty}
}

// EndSubmit leaves the busy state.
func (s *State) EndSubmit() {
	s.Busy = false
	if s.Area == AreaSpinner {
		if s.Staged != nil {
			s.Area = AreaFile
		} else {
			s.Area = AreaPrompt
		}
	}
}

// Apply updates the state for the outcome of a submission.
func (s *State) Apply(r Result) {
	switch r := r.(type) {
	case Success:
		s.ShowFeedback(Feedback{
			Success:  true,
			Title:    TitleSuccess,
			Message:  MessageSuccess,
			Filename: r.Filename,
			Location: r.Location,
		})
		s.ResetUpload()
		s.ResetSelector()
	case Failure:
		// Every failure but busy ends the attempt. The selector survives so
		// only the file has to be picked again.
		if r.Kind == KindBusy {
			return
		}
		s.ShowFeedback(Feedback{Title: r.Title, Message: r.Message})
		s.ResetUpload()
	}
}
