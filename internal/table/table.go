package table

import (
	"errors"
	"fmt"
)

// ColumnType is the explicit type tag of a column.
type ColumnType int

const (
	TypeText ColumnType = iota
	TypeNumeric
)

func (t ColumnType) String() string {
	switch t {
	case TypeText:
		return "text"
	case TypeNumeric:
		return "numeric"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

// DefaultName is used for tables loaded from single-table formats.
const DefaultName = "Sheet1"

var (
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrRaggedColumns   = errors.New("columns have different lengths")
)

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Type   ColumnType
	Values []Value
}

// NonMissing returns the number of cells that are not Missing.
func (c *Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}

// Table is a named, ordered collection of equally long columns.
type Table struct {
	Name    string
	Columns []Column
}

// New creates a table and checks that all columns have the same length.
func New(name string, columns ...Column) (*Table, error) {
	t := &Table{Name: name, Columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// FromRows builds a table from a header and raw string rows, classifying
// every column. Short rows are padded with missing cells.
func FromRows(name string, header []string, rows [][]string) (*Table, error) {
	columns := make([]Column, len(header))
	for c, h := range header {
		raw := make([]string, len(rows))
		for r, row := range rows {
			if c < len(row) {
				raw[r] = row[c]
			}
		}
		columns[c] = Classify(h, raw)
	}
	for r, row := range rows {
		if len(row) > len(header) {
			return nil, fmt.Errorf("row %d has %d fields, header has %d", r+1, len(row), len(header))
		}
	}
	return &Table{Name: name, Columns: columns}, nil
}

// Validate checks the column length invariant.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return nil
	}
	n := len(t.Columns[0].Values)
	for _, c := range t.Columns[1:] {
		if len(c.Values) != n {
			return fmt.Errorf("%w: %q has %d rows, %q has %d",
				ErrRaggedColumns, t.Columns[0].Name, n, c.Name, len(c.Values))
		}
	}
	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int { return len(t.Columns) }

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnIndex returns the position of the first column with the given name,
// or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Row returns the cells of row r in column order.
func (t *Table) Row(r int) []Value {
	row := make([]Value, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].Values[r]
	}
	return row
}

// Clone returns a deep copy that shares no cell storage with t.
func (t *Table) Clone() *Table {
	out := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = Column{
			Name:   c.Name,
			Type:   c.Type,
			Values: append([]Value(nil), c.Values...),
		}
	}
	return out
}

// Equal reports whether two tables have the same name, columns, types and
// cells.
func (t *Table) Equal(o *Table) bool {
	if t.Name != o.Name || len(t.Columns) != len(o.Columns) {
		return false
	}
	for i := range t.Columns {
		a, b := &t.Columns[i], &o.Columns[i]
		if a.Name != b.Name || a.Type != b.Type || len(a.Values) != len(b.Values) {
			return false
		}
		for r := range a.Values {
			if !a.Values[r].Equal(b.Values[r]) {
				return false
			}
		}
	}
	return true
}

// KeepRows returns a copy of t holding only the rows for which keep is true,
// in their original order.
func (t *Table) KeepRows(keep []bool) *Table {
	out := &Table{Name: t.Name, Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		values := make([]Value, 0, len(c.Values))
		for r, v := range c.Values {
			if keep[r] {
				values = append(values, v)
			}
		}
		out.Columns[i] = Column{Name: c.Name, Type: c.Type, Values: values}
	}
	return out
}

// StringRows returns the display form of every row, header excluded.
func (t *Table) StringRows() [][]string {
	rows := make([][]string, t.NumRows())
	for r := range rows {
		row := make([]string, len(t.Columns))
		for c := range t.Columns {
			row[c] = t.Columns[c].Values[r].String()
		}
		rows[r] = row
	}
	return rows
}

// Head returns a copy of the first n rows.
func (t *Table) Head(n int) *Table {
	if n < 0 || n >= t.NumRows() {
		return t.Clone()
	}
	keep := make([]bool, t.NumRows())
	for i := 0; i < n; i++ {
		keep[i] = true
	}
	return t.KeepRows(keep)
}
