package csvtable

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datatidy/internal/table"
)

func TestParse(t *testing.T) {
	tbl, format, err := Parse([]byte("name,age\nAnn,30\nBob,\n"))
	require.NoError(t, err)
	assert.Equal(t, ",", format.Separator)
	assert.Equal(t, table.DefaultName, tbl.Name)
	assert.Equal(t, []string{"name", "age"}, tbl.ColumnNames())
	assert.Equal(t, 2, tbl.NumRows())
	assert.Equal(t, table.TypeText, tbl.Columns[0].Type)
	assert.Equal(t, table.TypeNumeric, tbl.Columns[1].Type)
	assert.True(t, tbl.Columns[1].Values[1].IsMissing())
}

func TestParseDetectsSeparator(t *testing.T) {
	tests := []struct {
		name  string
		input string
		sep   string
	}{
		{"semicolon", "a;b\n1;2\n", ";"},
		{"tab", "a\tb\n1\t2\n", "\t"},
		{"sep header", "sep=;\na;b\n1;2\n", ";"},
		{"crlf", "a,b\r\n1,2\r\n", ","},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, format, err := Parse([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.sep, format.Separator)
			assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
			assert.Equal(t, [][]string{{"1", "2"}}, tbl.StringRows())
		})
	}
}

func TestParseTrimsBOMAndDecodesLatin1(t *testing.T) {
	tbl, _, err := Parse([]byte("\xef\xbb\xbfcity\nZürich\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"city"}, tbl.ColumnNames())
	assert.Equal(t, "Zürich", tbl.Columns[0].Values[0].String())

	tbl, _, err = Parse([]byte("city\nZ\xfcrich\n"))
	require.NoError(t, err)
	assert.Equal(t, "Zürich", tbl.Columns[0].Values[0].String())
}

func TestParseErrors(t *testing.T) {
	_, _, err := Parse(nil)
	assert.Error(t, err)

	_, _, err = Parse([]byte("a\n1,2\n"))
	assert.Error(t, err)
}

func TestUniqueHeader(t *testing.T) {
	assert.Equal(t,
		[]string{"a", "a.1", "Unnamed: 2", "a.2", "b"},
		UniqueHeader([]string{"a", "a", "", "a", "b"}),
	)
}

func TestMarshal(t *testing.T) {
	tbl, err := table.New("Sheet1",
		table.Column{Name: "name", Values: []table.Value{table.Text("ann"), table.Text("a,b")}},
		table.Column{Name: "score", Type: table.TypeNumeric, Values: []table.Value{table.Number(2.5), table.Missing()}},
	)
	require.NoError(t, err)

	data, err := Marshal(tbl)
	require.NoError(t, err)
	assert.Equal(t, "name,score\nann,2.5\n\"a,b\",\n", string(data))
}

func TestMarshalSingleEmptyField(t *testing.T) {
	tbl, err := table.New("Sheet1",
		table.Column{Name: "x", Values: []table.Value{table.Missing(), table.Text("y")}},
	)
	require.NoError(t, err)

	data, err := Marshal(tbl)
	require.NoError(t, err)
	assert.Equal(t, "x\n\"\"\ny\n", string(data))

	back, _, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, 2, back.NumRows())
}

func TestWrite(t *testing.T) {
	tbl, err := table.New("Sheet1",
		table.Column{Name: "a", Values: []table.Value{table.Text("1;x")}},
		table.Column{Name: "b", Values: []table.Value{table.Text("say \"hi\"")}},
	)
	require.NoError(t, err)

	var b strings.Builder
	require.NoError(t, Write(&b, tbl))
	assert.Equal(t, "a,b\n1;x,\"say \"\"hi\"\"\"\n", b.String())
}
