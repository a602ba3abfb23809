package core

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for files that are not csv, xlsx or
	// json.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	ErrFileNotFound = errors.New("file not found")
	ErrFileTooLarge = errors.New("file too large")

	// ErrNoTable is returned by operations that need a loaded table.
	ErrNoTable = errors.New("no table loaded")

	// ErrNotCleaned is returned by summary and export before cleaning.
	ErrNotCleaned = errors.New("table has not been cleaned")

	// ErrNoExport is returned when a download is requested before export.
	ErrNoExport = errors.New("nothing has been exported")
)

// ReadError wraps a failure to load a file.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// WriteError wraps a failure to write or read back an export.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }
