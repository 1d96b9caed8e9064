// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package upload

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotExcel marks a file rejected for lacking an .xlsx or .xls extension.
var ErrNotExcel = errors.New("not an Excel file")

const (
	xlsxType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	xlsType  = "application/vnd.ms-excel"
)

// File is a spreadsheet held in memory awaiting submission.
type File struct {
	Name string
	Data []byte
}

// Size returns the size of the file contents in bytes.
func (f File) Size() int64 {
	return int64(len(f.Data))
}

// ContentType returns the MIME type sent for the file part.
func (f File) ContentType() string {
	switch {
	case strings.HasSuffix(f.Name, ".xlsx"):
		return xlsxType
	case strings.HasSuffix(f.Name, ".xls"):
		return xlsType
	}
	return "application/octet-stream"
}

// IsExcel reports whether name ends in .xlsx or .xls. The check is case
// sensitive.
func IsExcel(name string) bool {
	return strings.HasSuffix(name, ".xlsx") || strings.HasSuffix(name, ".xls")
}

// Open reads the file at path. The staged name is the base name.
func Open(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return File{Name: filepath.Base(path), Data: data}, nil
}
