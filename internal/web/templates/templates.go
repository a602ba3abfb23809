// Package templates renders the HTML pages of the cleaning UI.
//
// Components are written in the .templ files next to this one; run
// `templ generate` after editing them to refresh the *_templ.go files.
package templates

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datatidy/internal/audit"
	"github.com/JonMunkholm/datatidy/internal/clean"
	"github.com/JonMunkholm/datatidy/internal/core"
)

// Flash is a one-shot message shown above the page content.
type Flash struct {
	Error   bool
	Message string
	Action  string
	Code    string
}

// PageData is everything the index page shows.
type PageData struct {
	Session     *core.Snapshot
	Flash       *Flash
	PreviewRows int
	Activity    []audit.Entry
	Gate        core.GateStatus
	// LoadPath prefills the path field.
	LoadPath string
}

type infoItem struct {
	Label string
	Value string
}

// sessionItems lists the non-empty facts about the loaded table.
func sessionItems(s *core.Snapshot) []infoItem {
	all := []infoItem{
		{"File", s.Path},
		{"Format", string(s.Format)},
		{"Table", s.Original.Name},
		{"Encoding", s.Encoding},
		{"Separator", s.Separator},
		{"Rows", strconv.Itoa(s.Original.NumRows())},
		{"Loaded", s.LoadedAt.Format("2006-01-02 15:04:05")},
		{"Cleaned tables", strings.Join(s.CleanedNames, ", ")},
	}
	items := all[:0]
	for _, it := range all {
		if it.Value != "" {
			items = append(items, it)
		}
	}
	return items
}

func loadPath(s *core.Snapshot, path string) string {
	if path == "" && s.HasTable() {
		return s.Path
	}
	return path
}

type summaryRow struct {
	Label string
	Cells []string
}

// summaryRows lays out column statistics with one row per statistic.
func summaryRows(stats []clean.ColumnStats) []summaryRow {
	stat := func(label string, cell func(clean.ColumnStats) string) summaryRow {
		row := summaryRow{Label: label, Cells: make([]string, len(stats))}
		for i, st := range stats {
			row.Cells[i] = cell(st)
		}
		return row
	}
	return []summaryRow{
		stat("count", func(st clean.ColumnStats) string { return strconv.Itoa(st.Count) }),
		stat("unique", func(st clean.ColumnStats) string { return intCell(st.Unique) }),
		stat("top", func(st clean.ColumnStats) string { return stringCell(st.Top) }),
		stat("freq", func(st clean.ColumnStats) string { return intCell(st.Freq) }),
		stat("mean", func(st clean.ColumnStats) string { return floatCell(st.Mean) }),
		stat("std", func(st clean.ColumnStats) string { return floatCell(st.Std) }),
		stat("min", func(st clean.ColumnStats) string { return floatCell(st.Min) }),
		stat("25%", func(st clean.ColumnStats) string { return floatCell(st.P25) }),
		stat("50%", func(st clean.ColumnStats) string { return floatCell(st.P50) }),
		stat("75%", func(st clean.ColumnStats) string { return floatCell(st.P75) }),
		stat("max", func(st clean.ColumnStats) string { return floatCell(st.Max) }),
	}
}

func intCell(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func stringCell(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func floatCell(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%.6g", *p)
}
