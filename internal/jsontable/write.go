package jsontable

import (
	"bytes"

	"github.com/JonMunkholm/datatidy/internal/table"
)

const indent = "    "

// Marshal renders t as an indented JSON array with one object per row.
// Keys follow column order, missing cells are null and non-ASCII text is
// written unescaped. A table without rows is written as an object of empty
// column arrays so that its columns survive a reload.
func Marshal(t *table.Table) ([]byte, error) {
	var b bytes.Buffer
	if t.NumRows() == 0 {
		if err := writeEmptyColumns(&b, t.ColumnNames()); err != nil {
			return nil, err
		}
		return b.Bytes(), nil
	}

	names := t.ColumnNames()
	b.WriteString("[\n")
	for r := 0; r < t.NumRows(); r++ {
		b.WriteString(indent + "{\n")
		for c, v := range t.Row(r) {
			b.WriteString(indent + indent)
			if err := writeString(&b, names[c]); err != nil {
				return nil, err
			}
			b.WriteString(": ")
			if err := writeCell(&b, v); err != nil {
				return nil, err
			}
			if c < len(names)-1 {
				b.WriteByte(',')
			}
			b.WriteByte('\n')
		}
		b.WriteString(indent + "}")
		if r < t.NumRows()-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("]")
	return b.Bytes(), nil
}

func writeEmptyColumns(b *bytes.Buffer, names []string) error {
	if len(names) == 0 {
		b.WriteString("[]")
		return nil
	}
	b.WriteString("{\n")
	for c, name := range names {
		b.WriteString(indent)
		if err := writeString(b, name); err != nil {
			return err
		}
		b.WriteString(": []")
		if c < len(names)-1 {
			b.WriteByte(',')
		}
		b.WriteByte('\n')
	}
	b.WriteString("}")
	return nil
}

func writeCell(b *bytes.Buffer, v table.Value) error {
	switch v.Kind() {
	case table.KindNumber:
		b.WriteString(v.String())
	case table.KindText:
		return writeString(b, v.String())
	default:
		b.WriteString("null")
	}
	return nil
}
