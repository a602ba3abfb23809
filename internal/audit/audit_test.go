package audit

import (
	"context"
	"errors"
	"testing"
)

func TestNewEntry(t *testing.T) {
	ctx := ContextWithIPAddress(context.Background(), "10.0.0.1")
	ctx = ContextWithUserAgent(ctx, "test-agent")

	e := NewEntry(ctx, Params{
		SessionID:  "s1",
		Action:     ActionClean,
		Table:      "Sheet1",
		RowsBefore: 5,
		RowsAfter:  3,
		Err:        errors.New("boom"),
	})

	if e.ID == "" {
		t.Error("expected an id")
	}
	if e.Severity != SeverityMedium {
		t.Errorf("Severity = %q, want %q", e.Severity, SeverityMedium)
	}
	if e.IPAddress != "10.0.0.1" || e.UserAgent != "test-agent" {
		t.Errorf("client details = %q/%q", e.IPAddress, e.UserAgent)
	}
	if e.Succeeded() {
		t.Error("entry with error reported success")
	}
	if e.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}
}

func TestDetermineSeverity(t *testing.T) {
	tests := []struct {
		action Action
		want   Severity
	}{
		{ActionLoad, SeverityHigh},
		{ActionReset, SeverityHigh},
		{ActionRename, SeverityMedium},
		{ActionClean, SeverityMedium},
		{ActionExport, SeverityMedium},
		{ActionSummary, SeverityLow},
	}
	for _, tt := range tests {
		if got := determineSeverity(tt.action); got != tt.want {
			t.Errorf("determineSeverity(%q) = %q, want %q", tt.action, got, tt.want)
		}
	}
}

func TestMemoryRecorder(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryRecorder(3)

	entries, err := m.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("got %d entries from empty recorder", len(entries))
	}

	for _, d := range []string{"a", "b", "c", "d"} {
		if err := m.Record(ctx, Entry{Detail: d}); err != nil {
			t.Fatal(err)
		}
	}

	entries, _ = m.Recent(ctx, 0)
	got := ""
	for _, e := range entries {
		got += e.Detail
	}
	if got != "dcb" {
		t.Errorf("Recent order = %q, want %q", got, "dcb")
	}

	entries, _ = m.Recent(ctx, 2)
	if len(entries) != 2 || entries[0].Detail != "d" {
		t.Errorf("Recent(2) = %+v", entries)
	}
}

func TestPgConversions(t *testing.T) {
	if toPgText("").Valid {
		t.Error("empty text should be NULL")
	}
	if v := toPgText("x"); !v.Valid || v.String != "x" {
		t.Errorf("toPgText(x) = %+v", v)
	}
	if toPgInt4(0).Valid {
		t.Error("zero should be NULL")
	}
	if v := toPgInt4(7); !v.Valid || v.Int32 != 7 {
		t.Errorf("toPgInt4(7) = %+v", v)
	}
}
