package jsontable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datatidy/internal/table"
)

func TestParseRecords(t *testing.T) {
	tbl, err := Parse([]byte(`[
		{"name": "Ann", "age": 30, "tags": ["a", "b"]},
		{"name": "Bob", "email": null, "age": 41.5, "active": true}
	]`))
	require.NoError(t, err)
	assert.Equal(t, table.DefaultName, tbl.Name)
	assert.Equal(t, []string{"name", "age", "tags", "email", "active"}, tbl.ColumnNames())
	assert.Equal(t, [][]string{
		{"Ann", "30", `["a", "b"]`, "", ""},
		{"Bob", "41.5", "", "", "true"},
	}, tbl.StringRows())
	assert.Equal(t, table.TypeNumeric, tbl.Columns[1].Type)
	assert.Equal(t, table.TypeText, tbl.Columns[4].Type)
	assert.True(t, tbl.Columns[3].Values[1].IsMissing())
}

func TestParseColumnLayouts(t *testing.T) {
	t.Run("arrays", func(t *testing.T) {
		tbl, err := Parse([]byte(`{"a": [1, 2], "b": ["x", "y"]}`))
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
		assert.Equal(t, [][]string{{"1", "x"}, {"2", "y"}}, tbl.StringRows())
	})

	t.Run("labelled", func(t *testing.T) {
		tbl, err := Parse([]byte(`{"a": {"0": 1, "1": 2}, "b": {"1": "y", "0": "x"}}`))
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"1", "x"}, {"2", "y"}}, tbl.StringRows())
	})

	t.Run("scalar array", func(t *testing.T) {
		tbl, err := Parse([]byte(`[3, 4]`))
		require.NoError(t, err)
		assert.Equal(t, []string{"0"}, tbl.ColumnNames())
		assert.Equal(t, 2, tbl.NumRows())
	})
}

func TestParseFlattens(t *testing.T) {
	tbl, err := Parse([]byte(`[{"a": {"b": 1}}, {"a": {"b": 2}}]`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a.b"}, tbl.ColumnNames())
	assert.Equal(t, [][]string{{"1"}, {"2"}}, tbl.StringRows())
	assert.Equal(t, table.TypeNumeric, tbl.Columns[0].Type)

	tbl, err = Parse([]byte(`{"id": 7, "user": {"name": "Ann", "address": {"city": "Oslo"}}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "user.name", "user.address.city"}, tbl.ColumnNames())
	assert.Equal(t, [][]string{{"7", "Ann", "Oslo"}}, tbl.StringRows())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"malformed", `[{"a": 1}`},
		{"scalar", `42`},
		{"mixed array", `[{"a": {"b": 1}}, 5]`},
		{"trailing data", `{"a": [1]} {}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			assert.Error(t, err)
		})
	}
}

func TestMarshal(t *testing.T) {
	tbl, err := table.New("Sheet1",
		table.Column{Name: "name", Values: []table.Value{table.Text("zoë"), table.Text("<b>")}},
		table.Column{Name: "age", Type: table.TypeNumeric, Values: []table.Value{table.Number(30), table.Missing()}},
	)
	require.NoError(t, err)

	data, err := Marshal(tbl)
	require.NoError(t, err)
	want := `[
    {
        "name": "zoë",
        "age": 30
    },
    {
        "name": "<b>",
        "age": null
    }
]`
	assert.Equal(t, want, string(data))

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, tbl.StringRows(), back.StringRows())
}

func TestMarshalEmpty(t *testing.T) {
	tbl, err := table.New("Sheet1", table.Column{Name: "a"}, table.Column{Name: "b"})
	require.NoError(t, err)
	data, err := Marshal(tbl)
	require.NoError(t, err)
	assert.Equal(t, "{\n    \"a\": [],\n    \"b\": []\n}", string(data))

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, back.ColumnNames())
	assert.Equal(t, 0, back.NumRows())

	none, err := table.New("Sheet1")
	require.NoError(t, err)
	data, err = Marshal(none)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
