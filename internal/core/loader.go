package core

import (
	"context"
	"fmt"

	fs "github.com/ungerik/go-fs"

	"github.com/JonMunkholm/datatidy/internal/csvtable"
	"github.com/JonMunkholm/datatidy/internal/exceltable"
	"github.com/JonMunkholm/datatidy/internal/jsontable"
	"github.com/JonMunkholm/datatidy/internal/table"
)

// Loaded is the result of reading a file.
type Loaded struct {
	Path   string
	Format Format
	Table  *table.Table

	// Sheets lists the worksheet names of a workbook; Sheet is the one that
	// was read. Both are empty for other formats.
	Sheets []string
	Sheet  string

	// Encoding and Separator describe delimited text input.
	Encoding  string
	Separator string
}

// Load reads the file at path into a table. For workbooks, sheet selects the
// worksheet; an empty sheet means the first one. maxSize limits the file
// size in bytes when positive.
func Load(ctx context.Context, path, sheet string, maxSize int64) (*Loaded, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := readFile(ctx, path, maxSize)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}

	loaded := &Loaded{Path: path, Format: format}
	switch format {
	case FormatCSV:
		t, f, err := csvtable.Parse(data)
		if err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
		loaded.Table = t
		loaded.Encoding = f.Encoding
		loaded.Separator = f.Separator

	case FormatXLSX:
		sheets, err := exceltable.SheetNames(data)
		if err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
		if sheet == "" {
			sheet = sheets[0]
		}
		t, err := exceltable.ReadSheet(data, sheet)
		if err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
		loaded.Table = t
		loaded.Sheets = sheets
		loaded.Sheet = sheet

	case FormatJSON:
		t, err := jsontable.Parse(data)
		if err != nil {
			return nil, &ReadError{Path: path, Err: err}
		}
		loaded.Table = t
	}
	return loaded, nil
}

func readFile(ctx context.Context, path string, maxSize int64) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	file := fs.File(path)
	if !file.Exists() {
		return nil, ErrFileNotFound
	}
	if file.IsDir() {
		return nil, fmt.Errorf("%s is a directory", file.Name())
	}
	if maxSize > 0 && file.Size() > maxSize {
		return nil, fmt.Errorf("%w: %d bytes exceeds limit of %d", ErrFileTooLarge, file.Size(), maxSize)
	}
	return file.ReadAll()
}
