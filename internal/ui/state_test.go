// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/staranto/olistconv/internal/clients"
	"github.com/staranto/olistconv/internal/upload"
)

func TestState_SelectReplacesStagedFile(t *testing.T) {
	s := NewState()
	assert.False(t, s.SubmitEnabled())

	s.Select(upload.File{Name: "a.xlsx", Data: []byte("a")})
	s.Select(upload.File{Name: "b.xlsx", Data: []byte("bb")})

	require.NotNil(t, s.Staged)
	assert.Equal(t, "b.xlsx", s.Staged.Name)
	assert.Equal(t, AreaFile, s.Area)
	assert.True(t, s.SubmitEnabled())
}

func TestState_SelectSkipsExtensionCheck(t *testing.T) {
	s := NewState()
	s.Select(upload.File{Name: "notes.txt"})
	require.NotNil(t, s.Staged)
	assert.Equal(t, "notes.txt", s.Staged.Name)
}

func TestState_Drop(t *testing.T) {
	tests := []struct {
		name       string
		files      []upload.File
		wantStaged string
		wantErr    bool
		wantView   ViewKind
	}{
		{
			name:       "spreadsheet accepted",
			files:      []upload.File{{Name: "report.xlsx"}},
			wantStaged: "report.xlsx",
			wantView:   ViewPlaceholder,
		},
		{
			name:       "legacy spreadsheet accepted",
			files:      []upload.File{{Name: "report.xls"}},
			wantStaged: "report.xls",
			wantView:   ViewPlaceholder,
		},
		{
			name:     "document rejected",
			files:    []upload.File{{Name: "report.docx"}},
			wantErr:  true,
			wantView: ViewFeedback,
		},
		{
			name:     "upper case extension rejected",
			files:    []upload.File{{Name: "REPORT.XLSX"}},
			wantErr:  true,
			wantView: ViewFeedback,
		},
		{
			name:       "only first file considered",
			files:      []upload.File{{Name: "a.xlsx"}, {Name: "b.xlsx"}},
			wantStaged: "a.xlsx",
			wantView:   ViewPlaceholder,
		},
		{
			name:     "nothing dropped",
			wantView: ViewPlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewState()
			s.DragOver()
			err := s.Drop(tt.files...)

			if tt.wantErr {
				var failure Failure
				require.ErrorAs(t, err, &failure)
				assert.Equal(t, KindInvalidInput, failure.Kind)
				assert.ErrorIs(t, err, upload.ErrNotExcel)
			} else {
				assert.NoError(t, err)
			}
			assert.False(t, s.DragActive)
			assert.Equal(t, tt.wantView, s.Preview.Kind)
			if tt.wantStaged == "" {
				assert.Nil(t, s.Staged)
				return
			}
			require.NotNil(t, s.Staged)
			assert.Equal(t, tt.wantStaged, s.Staged.Name)
		})
	}
}

func TestState_DropRejectedShowsInvalidFile(t *testing.T) {
	s := NewState()
	s.Select(upload.File{Name: "good.xlsx"})
	err := s.Drop(upload.File{Name: "report.docx"})
	require.Error(t, err)

	assert.Nil(t, s.Staged)
	assert.False(t, s.SubmitEnabled())
	assert.Equal(t, AreaPrompt, s.Area)
	assert.False(t, s.Preview.Feedback.Success)
	assert.Equal(t, TitleInvalidFile, s.Preview.Feedback.Title)
	assert.Equal(t, MessageInvalidFile, s.Preview.Feedback.Message)
}

func TestState_Remove(t *testing.T) {
	s := NewState()
	s.Select(upload.File{Name: "a.xlsx"})
	s.ShowNotice("something")
	s.Remove()

	assert.Nil(t, s.Staged)
	assert.False(t, s.SubmitEnabled())
	assert.Equal(t, ViewPlaceholder, s.Preview.Kind)
}

func TestState_Drag(t *testing.T) {
	s := NewState()
	s.DragOver()
	assert.True(t, s.DragActive)
	s.DragLeave()
	assert.False(t, s.DragActive)

	s.Select(upload.File{Name: "a.xlsx"})
	s.DragOver()
	assert.False(t, s.DragActive, "no highlight while a file is staged")
}

func TestState_ShowNoticeKeepsSuccess(t *testing.T) {
	s := NewState()
	s.Apply(Success{Filename: "saida.xlsx", Location: "/tmp/saida.xlsx"})
	s.ShowNotice(NoticeNoClients)

	assert.True(t, s.Preview.IsSuccess())
	assert.Equal(t, "saida.xlsx", s.Preview.Feedback.Filename)

	s.ShowFeedback(Feedback{Title: TitleProcessing, Message: "x"})
	s.ShowNotice(NoticeNoClients)
	assert.Equal(t, ViewNotice, s.Preview.Kind)
	assert.Equal(t, NoticeNoClients, s.Preview.Notice)
}

func TestState_Options(t *testing.T) {
	s := NewState()
	assert.True(t, s.SelectClient("7"), "any id accepted before options load")

	s.SetOptions([]clients.Client{{ID: "1", Name: "CL1 A"}, {ID: "2", Name: "CL2 B"}})
	assert.Empty(t, s.Selected, "selection dropped when not among options")
	assert.False(t, s.SelectClient("7"))
	assert.True(t, s.SelectClient("2"))

	c, ok := s.SelectedClient()
	require.True(t, ok)
	assert.Equal(t, "CL2 B", c.Name)

	s.ClearOptions()
	assert.Empty(t, s.Options)
	assert.Empty(t, s.Selected)
}

func TestState_Apply(t *testing.T) {
	t.Run("success resets upload and selector", func(t *testing.T) {
		s := NewState()
		s.Selected = "1"
		s.Select(upload.File{Name: "a.xlsx"})
		s.BeginSubmit()
		s.Apply(Success{Filename: "saida.xlsx"})
		s.EndSubmit()

		assert.True(t, s.Preview.IsSuccess())
		assert.Nil(t, s.Staged)
		assert.Empty(t, s.Selected)
		assert.Equal(t, AreaPrompt, s.Area)
		assert.False(t, s.Busy)
	})

	t.Run("transport failure resets upload only", func(t *testing.T) {
		s := NewState()
		s.Selected = "1"
		s.Select(upload.File{Name: "a.xlsx"})
		s.Apply(Failure{Kind: KindTransport, Title: TitleProcessing, Message: "arquivo inválido"})

		assert.Nil(t, s.Staged)
		assert.Equal(t, "1", s.Selected)
		assert.Equal(t, "arquivo inválido", s.Preview.Feedback.Message)
	})

	t.Run("validation failure resets upload", func(t *testing.T) {
		s := NewState()
		s.Select(upload.File{Name: "a.xlsx"})
		s.Apply(Failure{Kind: KindValidation, Title: TitleNoClient, Message: MessageNoClient})

		assert.Nil(t, s.Staged)
		assert.Equal(t, AreaPrompt, s.Area)
		assert.False(t, s.SubmitEnabled())
		assert.Equal(t, TitleNoClient, s.Preview.Feedback.Title)
	})

	t.Run("busy changes nothing", func(t *testing.T) {
		s := NewState()
		s.ShowNotice("x")
		s.Apply(Failure{Kind: KindBusy})
		assert.Equal(t, ViewNotice, s.Preview.Kind)
	})
}
