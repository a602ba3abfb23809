// Package audit records the activity of a cleaning session: every load,
// rename, clean, summary, export and reset, with its outcome.
//
// Two recorders are provided. MemoryRecorder keeps a bounded in-process
// history and is the default. PostgresRecorder stores entries in a
// PostgreSQL table so the history survives restarts; it is enabled by
// setting DATABASE_URL.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Action is the kind of operation being recorded.
type Action string

const (
	ActionLoad    Action = "load"
	ActionRename  Action = "rename"
	ActionClean   Action = "clean"
	ActionSummary Action = "summary"
	ActionExport  Action = "export"
	ActionReset   Action = "reset"
)

// Severity ranks how much an action changes session state.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// determineSeverity returns the severity recorded for an action.
func determineSeverity(action Action) Severity {
	switch action {
	case ActionLoad, ActionReset:
		return SeverityHigh
	case ActionSummary:
		return SeverityLow
	default:
		return SeverityMedium
	}
}

// Entry is a single history record.
type Entry struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"sessionId"`
	Action     Action    `json:"action"`
	Severity   Severity  `json:"severity"`
	Table      string    `json:"table,omitempty"`
	Path       string    `json:"path,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	RowsBefore int       `json:"rowsBefore,omitempty"`
	RowsAfter  int       `json:"rowsAfter,omitempty"`
	IPAddress  string    `json:"ipAddress,omitempty"`
	UserAgent  string    `json:"userAgent,omitempty"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Succeeded reports whether the recorded operation completed.
func (e Entry) Succeeded() bool { return e.Error == "" }

// Params describes an operation to record.
type Params struct {
	SessionID  string
	Action     Action
	Table      string
	Path       string
	Detail     string
	RowsBefore int
	RowsAfter  int
	Err        error
}

// NewEntry builds an Entry from params, stamping id, severity, time and
// the client details carried by ctx.
func NewEntry(ctx context.Context, p Params) Entry {
	e := Entry{
		ID:         uuid.NewString(),
		SessionID:  p.SessionID,
		Action:     p.Action,
		Severity:   determineSeverity(p.Action),
		Table:      p.Table,
		Path:       p.Path,
		Detail:     p.Detail,
		RowsBefore: p.RowsBefore,
		RowsAfter:  p.RowsAfter,
		IPAddress:  IPAddressFromContext(ctx),
		UserAgent:  UserAgentFromContext(ctx),
		CreatedAt:  time.Now().UTC(),
	}
	if p.Err != nil {
		e.Error = p.Err.Error()
	}
	return e
}

// Recorder persists and lists history entries.
type Recorder interface {
	Record(ctx context.Context, e Entry) error
	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Close()
}
