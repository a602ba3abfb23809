package csvtable

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"

	"github.com/JonMunkholm/datatidy/internal/table"
)

// Write writes t to dest as comma-delimited text with a header row and
// "\n" line endings. Missing cells are written as empty fields.
func Write(dest io.Writer, t *table.Table) error {
	buf := bufio.NewWriter(dest)
	cw := csv.NewWriter(buf)

	if err := writeRecord(cw, buf, t.ColumnNames()); err != nil {
		return err
	}
	for _, row := range t.StringRows() {
		if err := writeRecord(cw, buf, row); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return buf.Flush()
}

// writeRecord quotes a lone empty field so the line is not read back as a
// blank line.
func writeRecord(cw *csv.Writer, buf *bufio.Writer, record []string) error {
	if len(record) == 1 && record[0] == "" {
		cw.Flush()
		if err := cw.Error(); err != nil {
			return err
		}
		_, err := buf.WriteString("\"\"\n")
		return err
	}
	return cw.Write(record)
}

// Marshal returns t as comma-delimited text.
func Marshal(t *table.Table) ([]byte, error) {
	var b bytes.Buffer
	if err := Write(&b, t); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}
