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

// ExportPrefix is prepended to the base name of the source file.
const ExportPrefix = "cleaned_"

// Exported is a written export and its content.
type Exported struct {
	Name   string
	Path   string
	Format Format
	Data   []byte
}

// ExportName returns the file name used for exporting sourcePath.
func ExportName(sourcePath string) string {
	return ExportPrefix + fs.File(sourcePath).Name()
}

// Marshal serialises cleaned tables in format. Only workbooks hold more than
// one table; csv and json use the first.
func Marshal(format Format, tables ...*table.Table) ([]byte, error) {
	if len(tables) == 0 {
		return nil, ErrNotCleaned
	}
	switch format {
	case FormatCSV:
		return csvtable.Marshal(tables[0])
	case FormatXLSX:
		return exceltable.Marshal(tables...)
	case FormatJSON:
		return jsontable.Marshal(tables[0])
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Export writes tables as cleaned_<name of sourcePath> into outDir, then
// reads the file back and returns its bytes.
func Export(ctx context.Context, tables []*table.Table, sourcePath string, format Format, outDir string) (*Exported, error) {
	name := ExportName(sourcePath)
	if outDir == "" {
		outDir = "."
	}
	dir := fs.File(outDir)
	out := dir.Join(name)
	fail := func(err error) (*Exported, error) {
		return nil, &WriteError{Path: out.LocalPath(), Err: err}
	}

	if err := ctx.Err(); err != nil {
		return fail(err)
	}
	data, err := Marshal(format, tables...)
	if err != nil {
		return fail(err)
	}
	if !dir.Exists() {
		if err := dir.MakeAllDirs(); err != nil {
			return fail(err)
		}
	}
	if err := out.WriteAll(data); err != nil {
		return fail(err)
	}
	written, err := out.ReadAll()
	if err != nil {
		return fail(err)
	}
	return &Exported{
		Name:   name,
		Path:   out.LocalPath(),
		Format: format,
		Data:   written,
	}, nil
}
