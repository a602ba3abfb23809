package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"42", 42, true},
		{" -3.5 ", -3.5, true},
		{".5", 0.5, true},
		{"1e3", 1000, true},
		{"+7", 7, true},
		{"abc", 0, false},
		{"", 0, false},
		{"nan", 0, false},
		{"inf", 0, false},
		{"0x10", 0, false},
		{"1_000", 0, false},
		{"1,000", 0, false},
		{"1e400", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseNumber(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "3", FormatNumber(3))
	assert.Equal(t, "-2", FormatNumber(-2))
	assert.Equal(t, "2.5", FormatNumber(2.5))
	assert.Equal(t, "0.1", FormatNumber(0.1))
	assert.Equal(t, "1e+20", FormatNumber(1e20))
}

func TestClassify(t *testing.T) {
	t.Run("numeric with markers", func(t *testing.T) {
		col := Classify("age", []string{"30", "", "NA", "41.5"})
		assert.Equal(t, TypeNumeric, col.Type)
		assert.Equal(t, 2, col.NonMissing())
		f, ok := col.Values[3].Float()
		require.True(t, ok)
		assert.Equal(t, 41.5, f)
		assert.True(t, col.Values[0].IsNumber())
		assert.True(t, col.Values[1].IsMissing())
	})

	t.Run("mixed is text", func(t *testing.T) {
		col := Classify("id", []string{"1", "x", ""})
		assert.Equal(t, TypeText, col.Type)
		assert.Equal(t, KindText, col.Values[0].Kind())
		assert.Equal(t, "1", col.Values[0].String())
		assert.True(t, col.Values[2].IsMissing())
	})

	t.Run("all missing is numeric", func(t *testing.T) {
		col := Classify("empty", []string{"", "null"})
		assert.Equal(t, TypeNumeric, col.Type)
		assert.Equal(t, 0, col.NonMissing())
	})
}

func TestClassifyValues(t *testing.T) {
	assert.Equal(t, TypeNumeric, ClassifyValues("n", []Value{Number(1), Missing()}).Type)
	assert.Equal(t, TypeText, ClassifyValues("s", []Value{Number(1), Text("a")}).Type)
}

func TestValueEqual(t *testing.T) {
	assert.True(t, Missing().Equal(Missing()))
	assert.True(t, Number(2).Equal(Number(2.0)))
	assert.False(t, Number(2).Equal(Text("2")))
	assert.False(t, Text("").Equal(Missing()))
	assert.True(t, Number(math.NaN()).IsMissing())
}

func TestFromRows(t *testing.T) {
	tbl, err := FromRows("Sheet1", []string{"a", "b"}, [][]string{{"1", "x"}, {"2"}})
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, TypeNumeric, tbl.Columns[0].Type)
	assert.True(t, tbl.Columns[1].Values[1].IsMissing())

	_, err = FromRows("Sheet1", []string{"a"}, [][]string{{"1", "2"}})
	assert.Error(t, err)
}

func TestNewRejectsRaggedColumns(t *testing.T) {
	_, err := New("t",
		Column{Name: "a", Values: []Value{Number(1)}},
		Column{Name: "b", Values: []Value{}},
	)
	assert.ErrorIs(t, err, ErrRaggedColumns)
}

func TestClone(t *testing.T) {
	orig := sample(t)
	cp := orig.Clone()
	require.True(t, orig.Equal(cp))

	cp.Columns[0].Values[0] = Text("changed")
	cp.Columns[1].Name = "other"
	assert.Equal(t, "Ann", orig.Columns[0].Values[0].String())
	assert.Equal(t, "age", orig.Columns[1].Name)
}

func TestKeepRowsAndHead(t *testing.T) {
	tbl := sample(t)
	kept := tbl.KeepRows([]bool{false, true, true})
	assert.Equal(t, 2, kept.NumRows())
	assert.Equal(t, "Bob", kept.Columns[0].Values[0].String())
	assert.Equal(t, 1, tbl.Head(1).NumRows())
	assert.Equal(t, 3, tbl.Head(10).NumRows())
	assert.Equal(t, [][]string{{"Ann", "30"}}, tbl.Head(1).StringRows())
}

func TestRename(t *testing.T) {
	newTable := func() *Table {
		tbl, err := FromRows("Sheet1", []string{"a", "b", "c", "d"}, [][]string{{"1", "2", "3", "4"}})
		require.NoError(t, err)
		return tbl
	}

	t.Run("third of four", func(t *testing.T) {
		tbl := newTable()
		require.NoError(t, tbl.Rename([]Mapping{{Column: "c", NewName: "z"}}))
		assert.Equal(t, []string{"a", "b", "z", "d"}, tbl.ColumnNames())
		assert.Equal(t, "3", tbl.Columns[2].Values[0].String())
	})

	t.Run("missing selection ignored", func(t *testing.T) {
		tbl := newTable()
		require.NoError(t, tbl.Rename([]Mapping{{Column: "gone", NewName: "x"}, {Column: "a", NewName: "A"}}))
		assert.Equal(t, []string{"A", "b", "c", "d"}, tbl.ColumnNames())
	})

	t.Run("blank keeps original", func(t *testing.T) {
		tbl := newTable()
		require.NoError(t, tbl.Rename([]Mapping{{Column: "b", NewName: "   "}}))
		assert.Equal(t, []string{"a", "b", "c", "d"}, tbl.ColumnNames())
	})

	t.Run("swap", func(t *testing.T) {
		tbl := newTable()
		require.NoError(t, tbl.Rename([]Mapping{{Column: "a", NewName: "b"}, {Column: "b", NewName: "a"}}))
		assert.Equal(t, []string{"b", "a", "c", "d"}, tbl.ColumnNames())
	})

	t.Run("duplicate rejected atomically", func(t *testing.T) {
		tbl := newTable()
		err := tbl.Rename([]Mapping{{Column: "a", NewName: "x"}, {Column: "b", NewName: "d"}})
		assert.ErrorIs(t, err, ErrDuplicateColumn)
		assert.Equal(t, []string{"a", "b", "c", "d"}, tbl.ColumnNames())
	})
}

func sample(t *testing.T) *Table {
	t.Helper()
	tbl, err := FromRows("Sheet1", []string{"name", "age"}, [][]string{
		{"Ann", "30"},
		{"Bob", ""},
		{"Cy", "22"},
	})
	require.NoError(t, err)
	return tbl
}
