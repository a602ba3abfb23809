package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/datatidy/internal/audit"
	"github.com/JonMunkholm/datatidy/internal/metrics"
	"github.com/JonMunkholm/datatidy/internal/table"
)

func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	out := t.TempDir()
	return NewService(Options{OutputDir: out}, audit.NewMemoryRecorder(50), metrics.New()), out
}

func TestServiceEndToEndCSV(t *testing.T) {
	svc, out := newTestService(t)
	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "contacts.csv",
		"Full Name,Email,Age\n"+
			" Alice ,A@X.COM,30\n"+
			" Alice ,A@X.COM,30\n"+
			"Bob,,\n"+
			"Cy,c@x.com,40\n")

	snap, err := svc.Load(ctx, path, "")
	require.NoError(t, err)
	assert.True(t, snap.HasTable())
	assert.False(t, snap.HasCleaned())
	assert.Equal(t, 4, snap.Original.NumRows())

	snap, err = svc.Rename(ctx, []table.Mapping{{Column: "Full Name", NewName: "Name"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Email", "Age"}, snap.Original.ColumnNames())

	res, err := svc.Clean(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, res.RowsBefore)
	assert.Equal(t, 1, res.DuplicatesRemoved)
	assert.Equal(t, [][]string{
		{"alice", "a@x.com", "30"},
		{"bob", "", "35"},
		{"cy", "c@x.com", "40"},
	}, res.Table.StringRows())

	snap = svc.Snapshot()
	require.True(t, snap.HasCleaned())
	assert.Equal(t, 4, snap.Original.NumRows(), "original must stay viewable")
	assert.Equal(t, " Alice ", snap.Original.Columns[0].Values[0].String())

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Info.Rows)
	require.NotNil(t, summary.Stats[2].Mean)
	assert.InDelta(t, 35.0, *summary.Stats[2].Mean, 1e-9)

	exp, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cleaned_contacts.csv", exp.Name)
	assert.Equal(t, "Name,Email,Age\nalice,a@x.com,30\nbob,,35\ncy,c@x.com,40\n", string(exp.Data))
	onDisk, err := os.ReadFile(filepath.Join(out, "cleaned_contacts.csv"))
	require.NoError(t, err)
	assert.Equal(t, exp.Data, onDisk)

	dl, err := svc.Download()
	require.NoError(t, err)
	assert.Equal(t, exp.Data, dl.Data)

	entries, err := svc.Activity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t, audit.ActionExport, entries[0].Action)
	assert.Equal(t, audit.ActionLoad, entries[4].Action)
	for _, e := range entries {
		assert.Equal(t, snap.ID, e.SessionID)
		assert.True(t, e.Succeeded())
	}
}

func TestServiceStateErrors(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Clean(ctx)
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = svc.Rename(ctx, nil)
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = svc.Summary(ctx)
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = svc.Export(ctx)
	assert.ErrorIs(t, err, ErrNoTable)
	_, err = svc.Download()
	assert.ErrorIs(t, err, ErrNoTable)

	path := writeFile(t, t.TempDir(), "a.csv", "x\n1\n")
	_, err = svc.Load(ctx, path, "")
	require.NoError(t, err)

	_, err = svc.Summary(ctx)
	assert.ErrorIs(t, err, ErrNotCleaned)
	_, err = svc.Export(ctx)
	assert.ErrorIs(t, err, ErrNotCleaned)
	_, err = svc.Download()
	assert.ErrorIs(t, err, ErrNoExport)

	entries, err := svc.Activity(ctx, 0)
	require.NoError(t, err)
	assert.False(t, entries[0].Succeeded())
}

func TestServiceFailedLoadClearsSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	dir := t.TempDir()

	_, err := svc.Load(ctx, writeFile(t, dir, "a.csv", "x\n1\n"), "")
	require.NoError(t, err)

	_, err = svc.Load(ctx, writeFile(t, dir, "b.txt", "x"), "")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	assert.False(t, svc.Snapshot().HasTable())
}

func TestServiceRenameConflictLeavesTable(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Load(ctx, writeFile(t, t.TempDir(), "a.csv", "a,b\n1,2\n"), "")
	require.NoError(t, err)

	_, err = svc.Rename(ctx, []table.Mapping{{Column: "a", NewName: "b"}})
	assert.ErrorIs(t, err, table.ErrDuplicateColumn)
	assert.Equal(t, []string{"a", "b"}, svc.Snapshot().Original.ColumnNames())
}

func TestServiceWorkbookKeepsCleanedSheets(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	path := writeWorkbook(t, t.TempDir(), "book.xlsx", []string{"People", "Orders"}, map[string][][]any{
		"People": {{"Name"}, {"Ann"}, {"Ann"}},
		"Orders": {{"ID"}, {1}, {nil}, {3}},
	})

	snap, err := svc.Load(ctx, path, "People")
	require.NoError(t, err)
	assert.Equal(t, []string{"People", "Orders"}, snap.Sheets)
	id := snap.ID
	_, err = svc.Clean(ctx)
	require.NoError(t, err)

	snap, err = svc.Load(ctx, path, "Orders")
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.False(t, snap.HasCleaned())
	_, err = svc.Clean(ctx)
	require.NoError(t, err)

	snap = svc.Snapshot()
	assert.Equal(t, []string{"People", "Orders"}, snap.CleanedNames)

	exp, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cleaned_book.xlsx", exp.Name)

	reloaded, err := Load(ctx, exp.Path, "Orders", 0)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1"}, {"2"}, {"3"}}, reloaded.Table.StringRows())
	assert.Equal(t, []string{"People", "Orders"}, reloaded.Sheets)
}

func TestServiceCleanTwiceSupersedes(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Load(ctx, writeFile(t, t.TempDir(), "a.json", `[{"v": " X "}, {"v": "y"}]`), "")
	require.NoError(t, err)

	_, err = svc.Clean(ctx)
	require.NoError(t, err)
	_, err = svc.Rename(ctx, []table.Mapping{{Column: "v", NewName: "w"}})
	require.NoError(t, err)
	_, err = svc.Clean(ctx)
	require.NoError(t, err)

	snap := svc.Snapshot()
	assert.Equal(t, []string{table.DefaultName}, snap.CleanedNames)
	assert.Equal(t, []string{"w"}, snap.Cleaned.ColumnNames())
	assert.Equal(t, [][]string{{"x"}, {"y"}}, snap.Cleaned.StringRows())
}

func TestServiceReset(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	_, err := svc.Load(ctx, writeFile(t, t.TempDir(), "a.csv", "x\n1\n"), "")
	require.NoError(t, err)

	require.NoError(t, svc.Reset(ctx))
	assert.False(t, svc.Snapshot().HasTable())
	assert.Equal(t, 0, svc.GateStatus().Active)
}

func TestServiceBusy(t *testing.T) {
	svc := NewService(Options{OutputDir: t.TempDir(), OperationWait: 10e6}, nil, nil)
	require.NoError(t, svc.gate.Acquire(context.Background(), "test"))
	defer svc.gate.Release()

	_, err := svc.Clean(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
}

func TestExportRoundTrip(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		sheets   map[string][][]any
		wantCols []string
		wantRows int
	}{
		{
			name:     "csv",
			file:     "people.csv",
			content:  "Name,Email,Age\nann,a@x.com,30\nbob,,\nann,a@x.com,30\n",
			wantCols: []string{"Name", "Email", "Age"},
			wantRows: 2,
		},
		{
			name:     "csv single text column cleaned to empty",
			file:     "notes.csv",
			content:  "Note\n\" \"\nx\n",
			wantCols: []string{"Note"},
			wantRows: 2,
		},
		{
			name:     "csv every row dropped",
			file:     "dropped.csv",
			content:  "Name,Email,age\n,,1\n",
			wantCols: []string{"Name", "Email", "age"},
			wantRows: 0,
		},
		{
			name:     "json",
			file:     "people.json",
			content:  `[{"Name": "ann", "Age": 30}, {"Name": "bob", "Age": null}]`,
			wantCols: []string{"Name", "Age"},
			wantRows: 2,
		},
		{
			name:     "json every row dropped",
			file:     "dropped.json",
			content:  `[{"Name": null, "Email": null, "age": 1}]`,
			wantCols: []string{"Name", "Email", "age"},
			wantRows: 0,
		},
		{
			name: "xlsx",
			file: "book.xlsx",
			sheets: map[string][][]any{
				"People": {{"Name", "Age"}, {"ann", 30}, {"bob", nil}},
			},
			wantCols: []string{"Name", "Age"},
			wantRows: 2,
		},
		{
			name: "xlsx every row dropped",
			file: "dropped.xlsx",
			sheets: map[string][][]any{
				"People": {{"Name", "Email", "age"}, {nil, nil, 1}},
			},
			wantCols: []string{"Name", "Email", "age"},
			wantRows: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t)
			ctx := context.Background()

			var path string
			if tt.sheets != nil {
				path = writeWorkbook(t, t.TempDir(), tt.file, []string{"People"}, tt.sheets)
			} else {
				path = writeFile(t, t.TempDir(), tt.file, tt.content)
			}
			_, err := svc.Load(ctx, path, "")
			require.NoError(t, err)
			result, err := svc.Clean(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.wantCols, result.Table.ColumnNames())
			require.Equal(t, tt.wantRows, result.Table.NumRows())

			exp, err := svc.Export(ctx)
			require.NoError(t, err)

			back, err := Load(ctx, exp.Path, "", 0)
			require.NoError(t, err)
			assert.Equal(t, result.Table.ColumnNames(), back.Table.ColumnNames())
			assert.Equal(t, result.Table.NumRows(), back.Table.NumRows())
		})
	}
}
