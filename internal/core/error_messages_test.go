package core

import (
	"errors"
	"fmt"
	"os"
	"testing"

	"github.com/JonMunkholm/datatidy/internal/exceltable"
	"github.com/JonMunkholm/datatidy/internal/table"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{
			name:     "nil error returns empty",
			err:      nil,
			wantCode: "",
		},
		{
			name:     "unsupported format",
			err:      fmt.Errorf("%w: %q", ErrUnsupportedFormat, "txt"),
			wantCode: "FILE001",
		},
		{
			name:     "missing file inside read error",
			err:      &ReadError{Path: "x.csv", Err: ErrFileNotFound},
			wantCode: "FILE002",
		},
		{
			name:     "file too large",
			err:      &ReadError{Path: "x.csv", Err: fmt.Errorf("%w: 10 bytes", ErrFileTooLarge)},
			wantCode: "FILE003",
		},
		{
			name:     "generic read error",
			err:      &ReadError{Path: "x.csv", Err: errors.New("bad quoting")},
			wantCode: "FILE004",
		},
		{
			name:     "bad zip by text",
			err:      errors.New("zip: not a valid zip file"),
			wantCode: "FILE004",
		},
		{
			name:     "missing sheet",
			err:      &ReadError{Path: "x.xlsx", Err: exceltable.ErrSheetNotExist{SheetName: "Nope"}},
			wantCode: "FILE005",
		},
		{
			name:     "empty sheet",
			err:      &ReadError{Path: "x.xlsx", Err: fmt.Errorf("%w: %q", exceltable.ErrEmptySheet, "S")},
			wantCode: "FILE005",
		},
		{
			name:     "write error",
			err:      &WriteError{Path: "out/cleaned_x.csv", Err: errors.New("disk full")},
			wantCode: "EXP001",
		},
		{
			name:     "no table",
			err:      ErrNoTable,
			wantCode: "SES001",
		},
		{
			name:     "not cleaned",
			err:      ErrNotCleaned,
			wantCode: "SES002",
		},
		{
			name:     "busy",
			err:      ErrBusy,
			wantCode: "SES003",
		},
		{
			name:     "nothing exported",
			err:      ErrNoExport,
			wantCode: "SES004",
		},
		{
			name:     "duplicate column",
			err:      fmt.Errorf("%w: %q", table.ErrDuplicateColumn, "a"),
			wantCode: "REN001",
		},
		{
			name:     "permission denied on read",
			err:      &ReadError{Path: "x.csv", Err: &os.PathError{Op: "open", Path: "x.csv", Err: os.ErrPermission}},
			wantCode: "FILE004",
		},
		{
			name:     "permission denied on write",
			err:      &WriteError{Path: "out/cleaned_x.csv", Err: &os.PathError{Op: "open", Path: "out", Err: os.ErrPermission}},
			wantCode: "EXP001",
		},
		{
			name:     "not exist inside read error",
			err:      &ReadError{Path: "x.csv", Err: &os.PathError{Op: "open", Path: "x.csv", Err: os.ErrNotExist}},
			wantCode: "FILE002",
		},
		{
			name:     "case insensitive matching",
			err:      errors.New("Open x: No Such File or directory"),
			wantCode: "FILE002",
		},
		{
			name:     "unknown error returns default",
			err:      errors.New("some random internal error"),
			wantCode: "ERR000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() Code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() returned empty message")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	if got := FormatUserError(nil); got != "" {
		t.Errorf("FormatUserError(nil) = %q, want empty", got)
	}
	want := "No table is loaded (Code: SES001). Load a file first"
	if got := FormatUserError(ErrNoTable); got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
}

func TestIsUserFacing(t *testing.T) {
	if IsUserFacing(nil) {
		t.Error("nil should not be user facing")
	}
	if !IsUserFacing(ErrBusy) {
		t.Error("ErrBusy should be user facing")
	}
	if IsUserFacing(errors.New("internal")) {
		t.Error("unknown errors should not be user facing")
	}
}
