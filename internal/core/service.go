package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/datatidy/internal/audit"
	"github.com/JonMunkholm/datatidy/internal/clean"
	"github.com/JonMunkholm/datatidy/internal/logging"
	"github.com/JonMunkholm/datatidy/internal/metrics"
	"github.com/JonMunkholm/datatidy/internal/table"
)

// Options configures a Service.
type Options struct {
	// OutputDir receives exported files (default: working directory).
	OutputDir string

	// MaxFileSize limits loaded files in bytes; zero disables the check.
	MaxFileSize int64

	// OperationWait is how long an operation waits for a running one.
	OperationWait time.Duration
}

// Service runs the cleaning pipeline on a single session.
type Service struct {
	opts     Options
	recorder audit.Recorder
	metrics  *metrics.Metrics
	gate     *Gate

	mu      sync.RWMutex
	session *Session
}

// NewService creates a service. A nil recorder keeps an in-memory history;
// nil metrics disables instrumentation.
func NewService(opts Options, recorder audit.Recorder, m *metrics.Metrics) *Service {
	if recorder == nil {
		recorder = audit.NewMemoryRecorder(audit.DefaultMaxEntries)
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &Service{
		opts:     opts,
		recorder: recorder,
		metrics:  m,
		gate:     NewGate(1, opts.OperationWait),
	}
}

// Snapshot returns a copy of the current session.
func (s *Service) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.snapshot()
}

// GateStatus reports the running operation, if any.
func (s *Service) GateStatus() GateStatus { return s.gate.Status() }

// Drain waits for the running operation to finish.
func (s *Service) Drain(ctx context.Context) error { return s.gate.WaitForDrain(ctx) }

// Activity returns up to limit history entries, newest first.
func (s *Service) Activity(ctx context.Context, limit int) ([]audit.Entry, error) {
	return s.recorder.Recent(ctx, limit)
}

// Load reads path and makes it the session table. Loading another sheet of
// the workbook that is already loaded keeps the cleaned versions of the
// other sheets, so one export can hold them all. A failed load clears the
// session.
func (s *Service) Load(ctx context.Context, path, sheet string) (*Snapshot, error) {
	err := s.run(ctx, audit.ActionLoad, func(ctx context.Context, p *audit.Params) error {
		p.Path = path
		loaded, err := Load(ctx, path, sheet, s.opts.MaxFileSize)

		s.mu.Lock()
		defer s.mu.Unlock()
		if err != nil {
			s.session = nil
			return err
		}
		if s.session != nil && s.session.Format == FormatXLSX && s.session.Path == loaded.Path {
			s.session.switchSheet(loaded)
		} else {
			s.session = newSession(loaded)
		}
		p.SessionID = s.session.ID
		p.Table = loaded.Table.Name
		p.RowsAfter = loaded.Table.NumRows()
		p.Detail = fmt.Sprintf("%d columns", loaded.Table.NumColumns())
		s.metrics.SetRows("original", loaded.Table.NumRows())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Rename renames columns of the loaded table. Selections of columns that no
// longer exist are ignored and blank names keep the original; a rename that
// would duplicate a column name fails and leaves the table unchanged.
func (s *Service) Rename(ctx context.Context, mappings []table.Mapping) (*Snapshot, error) {
	err := s.run(ctx, audit.ActionRename, func(ctx context.Context, p *audit.Params) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		sess, err := s.loaded(p)
		if err != nil {
			return err
		}
		before := sess.Original.ColumnNames()
		if err := sess.Original.Rename(mappings); err != nil {
			return err
		}
		changed := 0
		for i, name := range sess.Original.ColumnNames() {
			if name != before[i] {
				changed++
			}
		}
		p.Detail = fmt.Sprintf("%d columns renamed", changed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Snapshot(), nil
}

// Clean runs the cleaning pipeline on a copy of the loaded table and stores
// the result as its latest cleaned version.
func (s *Service) Clean(ctx context.Context) (*clean.Result, error) {
	var res *clean.Result
	err := s.run(ctx, audit.ActionClean, func(ctx context.Context, p *audit.Params) error {
		s.mu.RLock()
		sess, err := s.loaded(p)
		var orig *table.Table
		if err == nil {
			orig = sess.Original.Clone()
		}
		s.mu.RUnlock()
		if err != nil {
			return err
		}

		res = clean.Clean(orig)

		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session != sess {
			return ErrNoTable
		}
		sess.setCleaned(orig.Name, res.Table)
		sess.LastClean = res

		p.RowsBefore = res.RowsBefore
		p.RowsAfter = res.RowsAfter()
		p.Detail = fmt.Sprintf("%d duplicates, %d dropped, %d filled, %d coercion failures",
			res.DuplicatesRemoved, res.RequiredDropped, res.MissingFilled, res.CoercionFailures)
		s.metrics.SetRows("cleaned", res.RowsAfter())
		s.metrics.AddRemoved("duplicate", res.DuplicatesRemoved)
		s.metrics.AddRemoved("missing_required", res.RequiredDropped)
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := *res
	out.Table = res.Table.Clone()
	return &out, nil
}

// Summary describes the cleaned version of the loaded table.
func (s *Service) Summary(ctx context.Context) (*clean.Summary, error) {
	var summary *clean.Summary
	err := s.run(ctx, audit.ActionSummary, func(ctx context.Context, p *audit.Params) error {
		s.mu.RLock()
		defer s.mu.RUnlock()
		sess, err := s.loaded(p)
		if err != nil {
			return err
		}
		cleaned := sess.Cleaned()
		if cleaned == nil {
			return ErrNotCleaned
		}
		summary = clean.Summarize(cleaned)
		p.RowsAfter = summary.Info.Rows
		return nil
	})
	return summary, err
}

// Export writes the cleaned tables of the session in the source format. On
// failure the cleaned tables stay in the session.
func (s *Service) Export(ctx context.Context) (*Exported, error) {
	var exported *Exported
	err := s.run(ctx, audit.ActionExport, func(ctx context.Context, p *audit.Params) error {
		s.mu.RLock()
		sess, err := s.loaded(p)
		var (
			tables       []*table.Table
			path         string
			format       Format
			cleanedTable *table.Table
		)
		if err == nil {
			cleanedTable = sess.Cleaned()
			tables = sess.CleanedTables()
			path, format = sess.Path, sess.Format
		}
		s.mu.RUnlock()
		if err != nil {
			return err
		}
		if cleanedTable == nil {
			return ErrNotCleaned
		}
		if format != FormatXLSX {
			tables = []*table.Table{cleanedTable}
		}

		p.Path = path
		exported, err = Export(ctx, tables, path, format, s.opts.OutputDir)
		if err != nil {
			return err
		}

		s.mu.Lock()
		sess.LastExport = exported
		s.mu.Unlock()

		p.Path = exported.Path
		p.RowsAfter = cleanedTable.NumRows()
		p.Detail = fmt.Sprintf("%s, %d tables, %d bytes", exported.Name, len(tables), len(exported.Data))
		s.metrics.AddExported(string(format), len(exported.Data))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return exported, nil
}

// Download returns the last export of the session.
func (s *Service) Download() (*Exported, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return nil, ErrNoTable
	}
	if s.session.LastExport == nil {
		return nil, ErrNoExport
	}
	return s.session.LastExport, nil
}

// Reset discards the session.
func (s *Service) Reset(ctx context.Context) error {
	return s.run(ctx, audit.ActionReset, func(ctx context.Context, p *audit.Params) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.session != nil {
			p.SessionID = s.session.ID
			p.Path = s.session.Path
		}
		s.session = nil
		return nil
	})
}

// loaded returns the session if it holds a table. s.mu must be held.
func (s *Service) loaded(p *audit.Params) (*Session, error) {
	if s.session == nil || s.session.Original == nil {
		return nil, ErrNoTable
	}
	p.SessionID = s.session.ID
	p.Table = s.session.Original.Name
	return s.session, nil
}

// run serialises fn through the gate and records its outcome in the log,
// the activity history and the metrics.
func (s *Service) run(ctx context.Context, action audit.Action, fn func(context.Context, *audit.Params) error) error {
	started := time.Now()
	logger := logging.WithFields(ctx, "operation", string(action))

	if err := s.gate.Acquire(ctx, string(action)); err != nil {
		logger.Warn("operation rejected", "error", err)
		s.metrics.Observe(string(action), started, err)
		return err
	}
	defer s.gate.Release()

	p := audit.Params{Action: action}
	err := fn(ctx, &p)
	p.Err = err

	logger = logger.With("session", p.SessionID, "table", p.Table)
	if err != nil {
		logger.Warn("operation failed", "error", err, "duration_ms", time.Since(started).Milliseconds())
	} else {
		logger.Info("operation completed",
			"rows_before", p.RowsBefore,
			"rows_after", p.RowsAfter,
			"detail", p.Detail,
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}

	if recErr := s.recorder.Record(ctx, audit.NewEntry(ctx, p)); recErr != nil {
		logger.Error("failed to record activity", "error", recErr)
	}
	s.metrics.Observe(string(action), started, err)
	return err
}
