package table

import (
	"fmt"
	"strings"
)

// Mapping pairs a selected original column name with its replacement.
type Mapping struct {
	Column  string
	NewName string
}

// RenamedColumns returns the full list of column names that applying
// mappings would produce, aligned to the current column order. Mappings for
// columns that do not exist are ignored and a blank replacement keeps the
// original name. Every mapping is resolved against the current names, so
// swapping two names in one call works.
func (t *Table) RenamedColumns(mappings []Mapping) ([]string, error) {
	names := t.ColumnNames()
	for _, m := range mappings {
		newName := strings.TrimSpace(m.NewName)
		if newName == "" {
			continue
		}
		for i, c := range t.Columns {
			if c.Name == m.Column {
				names[i] = newName
			}
		}
	}
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		if _, dup := seen[n]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, n)
		}
		seen[n] = struct{}{}
	}
	return names, nil
}

// Rename applies mappings in place. On error the table is unchanged.
func (t *Table) Rename(mappings []Mapping) error {
	names, err := t.RenamedColumns(mappings)
	if err != nil {
		return err
	}
	return t.SetColumnNames(names)
}

// SetColumnNames replaces all column names at once.
func (t *Table) SetColumnNames(names []string) error {
	if len(names) != len(t.Columns) {
		return fmt.Errorf("got %d column names for %d columns", len(names), len(t.Columns))
	}
	for i := range t.Columns {
		t.Columns[i].Name = names[i]
	}
	return nil
}
