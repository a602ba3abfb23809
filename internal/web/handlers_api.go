package web

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/JonMunkholm/datatidy/internal/audit"
	"github.com/JonMunkholm/datatidy/internal/core"
	"github.com/JonMunkholm/datatidy/internal/table"
)

// newValidator returns a validator that reports JSON field names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// LoadRequest is the body of POST /api/load.
type LoadRequest struct {
	Path  string `json:"path" validate:"required"`
	Sheet string `json:"sheet,omitempty"`
}

// RenameRequest is the body of POST /api/rename.
type RenameRequest struct {
	Mappings []RenameMapping `json:"mappings" validate:"required,min=1,dive"`
}

// RenameMapping renames one column; an empty newName keeps the name.
type RenameMapping struct {
	Column  string `json:"column" validate:"required"`
	NewName string `json:"newName"`
}

// ColumnResponse describes one column.
type ColumnResponse struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// TableResponse is a table preview.
type TableResponse struct {
	Name    string           `json:"name"`
	Rows    int              `json:"rows"`
	Columns []ColumnResponse `json:"columns"`
	Preview [][]string       `json:"preview"`
}

// SessionResponse is the state of the session.
type SessionResponse struct {
	Loaded       bool           `json:"loaded"`
	ID           string         `json:"id,omitempty"`
	Path         string         `json:"path,omitempty"`
	Format       string         `json:"format,omitempty"`
	Sheets       []string       `json:"sheets,omitempty"`
	Sheet        string         `json:"sheet,omitempty"`
	Encoding     string         `json:"encoding,omitempty"`
	Separator    string         `json:"separator,omitempty"`
	LoadedAt     *time.Time     `json:"loadedAt,omitempty"`
	Original     *TableResponse `json:"original,omitempty"`
	Cleaned      *TableResponse `json:"cleaned,omitempty"`
	CleanedNames []string       `json:"cleanedTables,omitempty"`
	Export       string         `json:"export,omitempty"`
	Busy         bool           `json:"busy"`
}

// CleanResponse reports a clean run.
type CleanResponse struct {
	RowsBefore        int            `json:"rowsBefore"`
	RowsAfter         int            `json:"rowsAfter"`
	DuplicatesRemoved int            `json:"duplicatesRemoved"`
	MissingFilled     int            `json:"missingFilled"`
	CoercionFailures  int            `json:"coercionFailures"`
	RequiredDropped   int            `json:"requiredDropped"`
	Table             *TableResponse `json:"table"`
}

// ExportResponse reports an export.
type ExportResponse struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Format string `json:"format"`
	Bytes  int    `json:"bytes"`
}

func (s *Server) tableResponse(t *table.Table) *TableResponse {
	if t == nil {
		return nil
	}
	cols := make([]ColumnResponse, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = ColumnResponse{Name: c.Name, Type: c.Type.String()}
	}
	return &TableResponse{
		Name:    t.Name,
		Rows:    t.NumRows(),
		Columns: cols,
		Preview: t.Head(s.cfg.Files.PreviewRows).StringRows(),
	}
}

func (s *Server) sessionResponse(snap *core.Snapshot) SessionResponse {
	resp := SessionResponse{
		Loaded: snap.HasTable(),
		Busy:   s.service.GateStatus().Active > 0,
	}
	if !snap.HasTable() {
		return resp
	}
	loadedAt := snap.LoadedAt
	resp.ID = snap.ID
	resp.Path = snap.Path
	resp.Format = string(snap.Format)
	resp.Sheets = snap.Sheets
	resp.Sheet = snap.Sheet
	resp.Encoding = snap.Encoding
	resp.Separator = snap.Separator
	resp.LoadedAt = &loadedAt
	resp.Original = s.tableResponse(snap.Original)
	resp.Cleaned = s.tableResponse(snap.Cleaned)
	resp.CleanedNames = snap.CleanedNames
	resp.Export = snap.ExportName
	return resp
}

// decodeValid decodes the JSON body into v and validates it. It writes the
// error response and returns false on failure.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		if errors.Is(err, io.EOF) {
			badRequest(w, r, "Request body is empty")
		} else {
			badRequest(w, r, "Request body contains invalid JSON")
		}
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			badRequest(w, r, "Invalid field "+verrs[0].Namespace()+": "+verrs[0].Tag())
		} else {
			badRequest(w, r, err.Error())
		}
		return false
	}
	return true
}

func (s *Server) handleAPISession(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.sessionResponse(s.service.Snapshot()))
}

func (s *Server) handleAPILoad(w http.ResponseWriter, r *http.Request) {
	var req LoadRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	snap, err := s.service.Load(ctx, req.Path, req.Sheet)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, s.sessionResponse(snap))
}

func (s *Server) handleAPIRename(w http.ResponseWriter, r *http.Request) {
	var req RenameRequest
	if !s.decodeValid(w, r, &req) {
		return
	}
	mappings := make([]table.Mapping, len(req.Mappings))
	for i, m := range req.Mappings {
		mappings[i] = table.Mapping{Column: m.Column, NewName: m.NewName}
	}

	ctx := WithRequestMetadata(r.Context(), r)
	snap, err := s.service.Rename(ctx, mappings)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, s.sessionResponse(snap))
}

func (s *Server) handleAPIClean(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	res, err := s.service.Clean(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, CleanResponse{
		RowsBefore:        res.RowsBefore,
		RowsAfter:         res.RowsAfter(),
		DuplicatesRemoved: res.DuplicatesRemoved,
		MissingFilled:     res.MissingFilled,
		CoercionFailures:  res.CoercionFailures,
		RequiredDropped:   res.RequiredDropped,
		Table:             s.tableResponse(res.Table),
	})
}

func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	summary, err := s.service.Summary(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

func (s *Server) handleAPIExport(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	exp, err := s.service.Export(ctx)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, ExportResponse{
		Name:   exp.Name,
		Path:   exp.Path,
		Format: string(exp.Format),
		Bytes:  len(exp.Data),
	})
}

func (s *Server) handleAPIActivity(w http.ResponseWriter, r *http.Request) {
	limit := activityLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(w, r, "limit must be a positive integer")
			return
		}
		limit = n
	}

	entries, err := s.service.Activity(r.Context(), limit)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if entries == nil {
		entries = []audit.Entry{}
	}
	render.JSON(w, r, entries)
}
