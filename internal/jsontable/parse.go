// Package jsontable converts record-oriented JSON documents to tables and
// back.
//
// Parse first tries the common tabular layouts: an array of flat records,
// an object of column arrays, or an object of column objects keyed by row
// label. Anything else that is an object or an array of objects is
// flattened, with nested object keys joined by dots ("a.b"). Arrays inside
// records are kept as their JSON text.
package jsontable

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/JonMunkholm/datatidy/internal/table"
)

var ErrNotTabular = errors.New("json document cannot be represented as a table")

// Parse converts a JSON document into a table named table.DefaultName.
func Parse(data []byte) (*table.Table, error) {
	doc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	if t, ok := tabular(doc); ok {
		return t, nil
	}
	return flatten(doc)
}

// recordSet accumulates rows of named cells, keeping the order in which
// column names first appear.
type recordSet struct {
	columns []string
	index   map[string]int
	rows    []map[string]any
}

func newRecordSet() *recordSet {
	return &recordSet{index: make(map[string]int)}
}

func (rs *recordSet) addColumn(name string) {
	if _, ok := rs.index[name]; !ok {
		rs.index[name] = len(rs.columns)
		rs.columns = append(rs.columns, name)
	}
}

func (rs *recordSet) table() (*table.Table, error) {
	columns := make([]table.Column, len(rs.columns))
	for c, name := range rs.columns {
		values := make([]table.Value, len(rs.rows))
		for r, row := range rs.rows {
			v, err := toValue(row[name])
			if err != nil {
				return nil, err
			}
			values[r] = v
		}
		columns[c] = table.ClassifyValues(name, values)
	}
	return table.New(table.DefaultName, columns...)
}

func tabular(doc any) (*table.Table, bool) {
	var (
		rs *recordSet
		ok bool
	)
	switch doc := doc.(type) {
	case []any:
		rs, ok = recordsLayout(doc)
	case *object:
		rs, ok = columnsLayout(doc)
	}
	if !ok {
		return nil, false
	}
	t, err := rs.table()
	if err != nil {
		return nil, false
	}
	return t, true
}

// recordsLayout accepts an array of flat objects or an array of scalars.
func recordsLayout(arr []any) (*recordSet, bool) {
	rs := newRecordSet()
	if len(arr) > 0 && isScalar(arr[0]) {
		rs.addColumn("0")
		for _, e := range arr {
			if !isScalar(e) {
				return nil, false
			}
			rs.rows = append(rs.rows, map[string]any{"0": e})
		}
		return rs, true
	}
	for _, e := range arr {
		obj, ok := e.(*object)
		if !ok {
			return nil, false
		}
		row := make(map[string]any, len(obj.keys))
		for _, k := range obj.keys {
			v := obj.get(k)
			if _, nested := v.(*object); nested {
				return nil, false
			}
			rs.addColumn(k)
			row[k] = v
		}
		rs.rows = append(rs.rows, row)
	}
	return rs, true
}

// columnsLayout accepts {"col": [v, ...]} with equally long arrays or
// {"col": {"label": v, ...}} with scalar cells.
func columnsLayout(obj *object) (*recordSet, bool) {
	if len(obj.keys) == 0 {
		return nil, false
	}
	rs := newRecordSet()
	switch obj.get(obj.keys[0]).(type) {
	case []any:
		n := -1
		for _, col := range obj.keys {
			arr, ok := obj.get(col).([]any)
			if !ok || (n >= 0 && len(arr) != n) {
				return nil, false
			}
			n = len(arr)
			for _, e := range arr {
				if !isScalar(e) {
					return nil, false
				}
			}
		}
		rs.rows = make([]map[string]any, n)
		for r := range rs.rows {
			rs.rows[r] = make(map[string]any, len(obj.keys))
		}
		for _, col := range obj.keys {
			rs.addColumn(col)
			for r, e := range obj.get(col).([]any) {
				rs.rows[r][col] = e
			}
		}
		return rs, true

	case *object:
		labels := make(map[string]int)
		for _, col := range obj.keys {
			cells, ok := obj.get(col).(*object)
			if !ok {
				return nil, false
			}
			rs.addColumn(col)
			for _, label := range cells.keys {
				cell := cells.get(label)
				if !isScalar(cell) {
					return nil, false
				}
				r, seen := labels[label]
				if !seen {
					r = len(rs.rows)
					labels[label] = r
					rs.rows = append(rs.rows, make(map[string]any))
				}
				rs.rows[r][col] = cell
			}
		}
		return rs, true
	}
	return nil, false
}

// flatten turns an object or an array of objects into records with dotted
// column names for nested keys.
func flatten(doc any) (*table.Table, error) {
	var objects []*object
	switch doc := doc.(type) {
	case *object:
		objects = []*object{doc}
	case []any:
		for i, e := range doc {
			obj, ok := e.(*object)
			if !ok {
				return nil, fmt.Errorf("%w: element %d is not an object", ErrNotTabular, i)
			}
			objects = append(objects, obj)
		}
	default:
		return nil, fmt.Errorf("%w: top-level value is a scalar", ErrNotTabular)
	}

	rs := newRecordSet()
	for _, obj := range objects {
		row := make(map[string]any)
		flattenInto(rs, row, "", obj)
		rs.rows = append(rs.rows, row)
	}
	return rs.table()
}

func flattenInto(rs *recordSet, row map[string]any, prefix string, obj *object) {
	for _, k := range obj.keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		if nested, ok := obj.get(k).(*object); ok && len(nested.keys) > 0 {
			flattenInto(rs, row, name, nested)
			continue
		}
		rs.addColumn(name)
		row[name] = obj.get(k)
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case *object, []any:
		return false
	default:
		return true
	}
}

func toValue(v any) (table.Value, error) {
	switch v := v.(type) {
	case nil:
		return table.Missing(), nil
	case string:
		return table.Text(v), nil
	case bool:
		return table.Text(strconv.FormatBool(v)), nil
	case json.Number:
		f, err := strconv.ParseFloat(v.String(), 64)
		if err != nil {
			return table.Text(v.String()), nil
		}
		return table.Number(f), nil
	default:
		s, err := marshalCompact(v)
		if err != nil {
			return table.Value{}, err
		}
		return table.Text(s), nil
	}
}
