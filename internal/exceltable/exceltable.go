// Package exceltable reads worksheets into tables and writes tables as
// workbooks with one worksheet per table.
package exceltable

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/JonMunkholm/datatidy/internal/csvtable"
	"github.com/JonMunkholm/datatidy/internal/table"
)

var (
	ErrEmptySheet = errors.New("empty sheet")
	ErrNoSheets   = errors.New("workbook has no sheets")
)

type ErrSheetNotExist = excelize.ErrSheetNotExist

// SheetNames returns the worksheet names of the workbook in data, in
// workbook order.
func SheetNames(data []byte) (names []string, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()
	names = f.GetSheetList()
	if len(names) == 0 {
		return nil, ErrNoSheets
	}
	return names, nil
}

// ReadSheet parses one worksheet into a table named after the sheet.
// An empty sheet name selects the first sheet. The first non-empty row is
// the header; raw cell values are used, not their display formatting.
func ReadSheet(data []byte, sheet string) (t *table.Table, err error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	if sheet == "" {
		sheet = f.GetSheetName(0)
		if sheet == "" {
			return nil, ErrNoSheets
		}
	}
	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, ErrSheetNotExist{SheetName: sheet}
	}
	return readSheet(f, sheet)
}

func readSheet(f *excelize.File, sheet string) (*table.Table, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	rows = removeEmptyRows(rows)
	numCols := removeEmptyColumns(rows)
	if len(rows) == 0 || numCols == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySheet, sheet)
	}

	header := rows[0]
	if len(header) < numCols {
		header = append(header, make([]string, numCols-len(header))...)
	}
	return table.FromRows(sheet, csvtable.UniqueHeader(header), rows[1:])
}

// removeEmptyRows drops leading and trailing rows without content.
func removeEmptyRows(rows [][]string) [][]string {
	isEmpty := func(row []string) bool {
		for _, s := range row {
			if s != "" {
				return false
			}
		}
		return true
	}
	for len(rows) > 0 && isEmpty(rows[0]) {
		rows = rows[1:]
	}
	for len(rows) > 0 && isEmpty(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

// removeEmptyColumns drops leading columns that are empty in every row and
// trims each row to the widest used column. It returns the column count.
func removeEmptyColumns(rows [][]string) int {
	lead := -1
	width := 0
	for _, row := range rows {
		for c, s := range row {
			if s == "" {
				continue
			}
			if lead < 0 || c < lead {
				lead = c
			}
			if c+1 > width {
				width = c + 1
			}
		}
	}
	if lead < 0 {
		return 0
	}
	for i, row := range rows {
		if len(row) > width {
			row = row[:width]
		}
		if len(row) > lead {
			row = row[lead:]
		} else {
			row = nil
		}
		rows[i] = row
	}
	return width - lead
}

// Marshal writes the tables as a workbook, one worksheet per table, in the
// given order. Numeric cells are written as numbers and missing cells are
// left empty.
func Marshal(tables ...*table.Table) (data []byte, err error) {
	if len(tables) == 0 {
		return nil, ErrNoSheets
	}
	f := excelize.NewFile()
	defer func() {
		err = errors.Join(err, f.Close())
	}()

	defaultSheet := f.GetSheetName(0)
	for i, t := range tables {
		name := t.Name
		if name == "" {
			name = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			if err := f.SetSheetName(defaultSheet, name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, name, t); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, t *table.Table) error {
	header := make([]any, t.NumColumns())
	for c, name := range t.ColumnNames() {
		header[c] = name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for r := 0; r < t.NumRows(); r++ {
		row := make([]any, t.NumColumns())
		for c, v := range t.Row(r) {
			switch v.Kind() {
			case table.KindNumber:
				row[c], _ = v.Float()
			case table.KindText:
				row[c] = v.String()
			default:
				row[c] = nil
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
