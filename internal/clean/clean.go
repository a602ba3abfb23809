// Package clean implements the fixed cleaning pipeline and the summary
// statistics shown for cleaned tables.
//
// Clean applies, in order:
//
//  1. Exact duplicate row removal, keeping the first occurrence.
//  2. Per column normalisation by type tag. Text cells are trimmed and
//     lower-cased, and the placeholder "nan" (the text form of a missing
//     cell) becomes "". Numeric columns have missing cells filled with the
//     median of the column, then every cell is coerced to a number; cells
//     that do not parse become missing and stay missing.
//  3. Rows missing a value in a column named exactly "Name" or "Email" are
//     dropped.
//
// The input table is never modified.
package clean

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/JonMunkholm/datatidy/internal/table"
)

// RequiredColumns are the column names whose missing cells drop a row.
var RequiredColumns = []string{"Name", "Email"}

// placeholder is the text form of a missing cell and is blanked after
// normalisation.
const placeholder = "nan"

// Result describes what a Clean run changed.
type Result struct {
	Table             *table.Table
	RowsBefore        int
	DuplicatesRemoved int
	MissingFilled     int
	CoercionFailures  int
	RequiredDropped   int
}

// RowsAfter returns the row count of the cleaned table.
func (r *Result) RowsAfter() int { return r.Table.NumRows() }

// Clean runs the pipeline on a copy of t.
func Clean(t *table.Table) *Result {
	res := &Result{RowsBefore: t.NumRows()}

	out := Deduplicate(t)
	res.DuplicatesRemoved = res.RowsBefore - out.NumRows()

	lower := cases.Lower(language.Und)
	for i := range out.Columns {
		col := &out.Columns[i]
		switch col.Type {
		case table.TypeNumeric:
			filled, failed := normalizeNumeric(col)
			res.MissingFilled += filled
			res.CoercionFailures += failed
		default:
			normalizeText(col, lower)
		}
	}

	before := out.NumRows()
	out = DropMissingRequired(out)
	res.RequiredDropped = before - out.NumRows()

	res.Table = out
	return res
}

// Deduplicate returns a copy of t without exact duplicate rows. Missing
// cells compare equal to each other.
func Deduplicate(t *table.Table) *table.Table {
	n := t.NumRows()
	keep := make([]bool, n)
	seen := make(map[string]struct{}, n)
	var key strings.Builder
	for r := 0; r < n; r++ {
		key.Reset()
		for c := range t.Columns {
			writeKey(&key, t.Columns[c].Values[r])
		}
		k := key.String()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		keep[r] = true
	}
	return t.KeepRows(keep)
}

// writeKey appends a length-prefixed encoding of v so that cell boundaries
// cannot be confused.
func writeKey(b *strings.Builder, v table.Value) {
	switch v.Kind() {
	case table.KindNumber:
		f, _ := v.Float()
		if f == 0 {
			f = 0 // -0 and 0 are the same cell
		}
		s := strconv.FormatFloat(f, 'g', -1, 64)
		b.WriteString("n")
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	case table.KindText:
		s := v.String()
		b.WriteString("t")
		b.WriteString(strconv.Itoa(len(s)))
		b.WriteByte(':')
		b.WriteString(s)
	default:
		b.WriteString("m")
	}
}

func normalizeText(col *table.Column, lower cases.Caser) {
	for r, v := range col.Values {
		s := placeholder
		if !v.IsMissing() {
			s = v.String()
		}
		s = lower.String(strings.TrimSpace(s))
		if s == placeholder {
			s = ""
		}
		col.Values[r] = table.Text(s)
	}
	col.Type = table.TypeText
}

// normalizeNumeric fills missing cells with the median taken before
// coercion, then coerces every cell to a number. Cells that fail to parse
// become missing and are not filled again.
func normalizeNumeric(col *table.Column) (filled, failed int) {
	median, ok := Median(col.Values)
	for r, v := range col.Values {
		if v.IsMissing() {
			if ok {
				col.Values[r] = table.Number(median)
				filled++
			}
			continue
		}
		f, parsed := v.Float()
		if !parsed {
			col.Values[r] = table.Missing()
			failed++
			continue
		}
		col.Values[r] = table.Number(f)
	}
	col.Type = table.TypeNumeric
	return filled, failed
}

// Median returns the median of the numeric cells in values, averaging the
// two middle values for an even count. Missing and text cells are skipped.
// ok is false when there is no numeric cell.
func Median(values []table.Value) (median float64, ok bool) {
	nums := numbers(values)
	if len(nums) == 0 {
		return math.NaN(), false
	}
	return quantile(nums, 0.5), true
}

// DropMissingRequired removes rows that are missing a value in any of the
// RequiredColumns present in t.
func DropMissingRequired(t *table.Table) *table.Table {
	var required []int
	for _, name := range RequiredColumns {
		if i := t.ColumnIndex(name); i >= 0 {
			required = append(required, i)
		}
	}
	if len(required) == 0 {
		return t
	}
	keep := make([]bool, t.NumRows())
	for r := range keep {
		keep[r] = true
		for _, c := range required {
			if t.Columns[c].Values[r].IsMissing() {
				keep[r] = false
				break
			}
		}
	}
	return t.KeepRows(keep)
}
