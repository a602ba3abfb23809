package clean

import (
	"math"
	"sort"

	"github.com/JonMunkholm/datatidy/internal/table"
)

// ColumnStats is the descriptive summary of one column. Statistics that do
// not apply to the column type, or are undefined for the data, are nil.
type ColumnStats struct {
	Name  string           `json:"name"`
	Type  table.ColumnType `json:"-"`
	Count int              `json:"count"`

	Unique *int    `json:"unique,omitempty"`
	Top    *string `json:"top,omitempty"`
	Freq   *int    `json:"freq,omitempty"`

	Mean *float64 `json:"mean,omitempty"`
	Std  *float64 `json:"std,omitempty"`
	Min  *float64 `json:"min,omitempty"`
	P25  *float64 `json:"p25,omitempty"`
	P50  *float64 `json:"p50,omitempty"`
	P75  *float64 `json:"p75,omitempty"`
	Max  *float64 `json:"max,omitempty"`
}

// ColumnInfo is the structural description of one column.
type ColumnInfo struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	NonMissing int    `json:"non_missing"`
}

// Info is the structural description of a table.
type Info struct {
	Rows    int          `json:"rows"`
	Columns []ColumnInfo `json:"columns"`
}

// Summary combines descriptive statistics and structure.
type Summary struct {
	Table string        `json:"table"`
	Stats []ColumnStats `json:"stats"`
	Info  Info          `json:"info"`
}

// Summarize describes every column of t and its structure.
func Summarize(t *table.Table) *Summary {
	return &Summary{
		Table: t.Name,
		Stats: Describe(t),
		Info:  Structure(t),
	}
}

// Describe computes per column statistics. Text columns report count,
// unique, top and freq; numeric columns report count, mean, std, min,
// quartiles and max.
func Describe(t *table.Table) []ColumnStats {
	stats := make([]ColumnStats, len(t.Columns))
	for i := range t.Columns {
		col := &t.Columns[i]
		s := ColumnStats{Name: col.Name, Type: col.Type, Count: col.NonMissing()}
		if col.Type == table.TypeNumeric {
			describeNumeric(&s, col)
		} else {
			describeText(&s, col)
		}
		stats[i] = s
	}
	return stats
}

func describeNumeric(s *ColumnStats, col *table.Column) {
	nums := numbers(col.Values)
	if len(nums) == 0 {
		return
	}
	mean, std := meanStd(nums)
	s.Mean = finite(mean)
	s.Std = finite(std)
	s.Min = finite(nums[0])
	s.P25 = finite(quantile(nums, 0.25))
	s.P50 = finite(quantile(nums, 0.5))
	s.P75 = finite(quantile(nums, 0.75))
	s.Max = finite(nums[len(nums)-1])
}

// finite leaves statistics that overflowed or are undefined unset.
func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

// describeText counts distinct non-missing values. Ties for the most
// frequent value go to the one seen first.
func describeText(s *ColumnStats, col *table.Column) {
	counts := make(map[string]int)
	var order []string
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		key := v.String()
		if counts[key] == 0 {
			order = append(order, key)
		}
		counts[key]++
	}
	s.Unique = ptr(len(order))
	if len(order) == 0 {
		return
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	s.Top = ptr(order[0])
	s.Freq = ptr(counts[order[0]])
}

// Structure reports row count and, per column, name, type tag and
// non-missing count.
func Structure(t *table.Table) Info {
	info := Info{Rows: t.NumRows(), Columns: make([]ColumnInfo, len(t.Columns))}
	for i := range t.Columns {
		col := &t.Columns[i]
		info.Columns[i] = ColumnInfo{
			Name:       col.Name,
			Type:       col.Type.String(),
			NonMissing: col.NonMissing(),
		}
	}
	return info
}

func ptr[T any](v T) *T { return &v }
