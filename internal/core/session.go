package core

import (
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/datatidy/internal/clean"
	"github.com/JonMunkholm/datatidy/internal/table"
)

// Session is the state of one cleaning session. It replaces any global UI
// state: the loaded table, the cleaned versions keyed by table name and the
// last export.
type Session struct {
	ID       string
	LoadedAt time.Time

	Path      string
	Format    Format
	Sheets    []string
	Sheet     string
	Encoding  string
	Separator string

	Original *table.Table

	// cleaned holds the latest cleaned version per table name in the order
	// the tables were first cleaned.
	cleaned      map[string]*table.Table
	cleanedOrder []string

	LastClean  *clean.Result
	LastExport *Exported
}

func newSession(loaded *Loaded) *Session {
	return &Session{
		ID:        uuid.NewString(),
		LoadedAt:  time.Now(),
		Path:      loaded.Path,
		Format:    loaded.Format,
		Sheets:    loaded.Sheets,
		Sheet:     loaded.Sheet,
		Encoding:  loaded.Encoding,
		Separator: loaded.Separator,
		Original:  loaded.Table,
		cleaned:   make(map[string]*table.Table),
	}
}

// switchSheet keeps the session and its cleaned cache but replaces the
// loaded table with another sheet of the same workbook.
func (s *Session) switchSheet(loaded *Loaded) {
	s.LoadedAt = time.Now()
	s.Sheets = loaded.Sheets
	s.Sheet = loaded.Sheet
	s.Original = loaded.Table
	s.LastClean = nil
}

// setCleaned stores t as the latest cleaned version of the table name.
func (s *Session) setCleaned(name string, t *table.Table) {
	if _, ok := s.cleaned[name]; !ok {
		s.cleanedOrder = append(s.cleanedOrder, name)
	}
	s.cleaned[name] = t
}

// Cleaned returns the latest cleaned version of the loaded table, or nil.
func (s *Session) Cleaned() *table.Table {
	if s.Original == nil {
		return nil
	}
	return s.cleaned[s.Original.Name]
}

// CleanedTables returns every cached cleaned table in first-cleaned order.
func (s *Session) CleanedTables() []*table.Table {
	out := make([]*table.Table, 0, len(s.cleanedOrder))
	for _, name := range s.cleanedOrder {
		out = append(out, s.cleaned[name])
	}
	return out
}

// Snapshot is a read-only copy of the session for rendering.
type Snapshot struct {
	ID        string
	LoadedAt  time.Time
	Path      string
	Format    Format
	Sheets    []string
	Sheet     string
	Encoding  string
	Separator string

	Original *table.Table
	Cleaned  *table.Table

	CleanedNames []string
	LastClean    *clean.Result
	Summary      *clean.Summary
	ExportName   string
	ExportSize   int
}

// HasTable reports whether a table is loaded.
func (s *Snapshot) HasTable() bool { return s != nil && s.Original != nil }

// HasCleaned reports whether the loaded table has a cleaned version.
func (s *Snapshot) HasCleaned() bool { return s != nil && s.Cleaned != nil }

func (s *Session) snapshot() *Snapshot {
	if s == nil {
		return &Snapshot{}
	}
	snap := &Snapshot{
		ID:           s.ID,
		LoadedAt:     s.LoadedAt,
		Path:         s.Path,
		Format:       s.Format,
		Sheets:       append([]string(nil), s.Sheets...),
		Sheet:        s.Sheet,
		Encoding:     s.Encoding,
		Separator:    s.Separator,
		CleanedNames: append([]string(nil), s.cleanedOrder...),
	}
	if s.Original != nil {
		snap.Original = s.Original.Clone()
	}
	if c := s.Cleaned(); c != nil {
		snap.Cleaned = c.Clone()
		snap.Summary = clean.Summarize(c)
	}
	if s.LastClean != nil {
		last := *s.LastClean
		last.Table = snap.Cleaned
		snap.LastClean = &last
	}
	if s.LastExport != nil {
		snap.ExportName = s.LastExport.Name
		snap.ExportSize = len(s.LastExport.Data)
	}
	return snap
}
