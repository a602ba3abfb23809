package csvtable

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/JonMunkholm/datatidy/internal/table"
)

// Parse detects the format of data and parses it into a table named
// table.DefaultName. The first record is the header.
func Parse(data []byte) (*table.Table, *Format, error) {
	format, text, err := DetectFormat(data, nil)
	if err != nil {
		return nil, nil, err
	}
	records, err := readRecords(text, format)
	if err != nil {
		return nil, format, err
	}
	if len(records) == 0 {
		return nil, format, errEmpty
	}
	header := UniqueHeader(records[0])
	t, err := table.FromRows(table.DefaultName, header, records[1:])
	if err != nil {
		return nil, format, err
	}
	return t, format, nil
}

func readRecords(text []byte, format *Format) ([][]string, error) {
	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = []rune(format.Separator)[0]
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}
	return records, nil
}

// UniqueHeader names blank header cells "Unnamed: <index>" and suffixes
// repeated names with ".1", ".2" and so on.
func UniqueHeader(header []string) []string {
	out := make([]string, len(header))
	used := make(map[string]bool, len(header))
	suffix := make(map[string]int)
	for i, h := range header {
		if h == "" {
			h = "Unnamed: " + strconv.Itoa(i)
		}
		name := h
		for used[name] {
			suffix[h]++
			name = h + "." + strconv.Itoa(suffix[h])
		}
		used[name] = true
		out[i] = name
	}
	return out
}
