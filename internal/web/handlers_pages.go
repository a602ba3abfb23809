package web

import (
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/JonMunkholm/datatidy/internal/logging"
	"github.com/JonMunkholm/datatidy/internal/table"
	"github.com/JonMunkholm/datatidy/internal/web/templates"
)

// notices are the success messages shown after a form post redirects back
// to the index page.
var notices = map[string]string{
	"load":   "Data loaded successfully!",
	"rename": "Columns renamed successfully!",
	"clean":  "Data cleaned successfully!",
	"export": "Data exported successfully!",
	"reset":  "Session cleared.",
}

// handleIndex renders the page with the current session.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	var flash *templates.Flash
	if msg, ok := notices[r.URL.Query().Get("done")]; ok {
		flash = &templates.Flash{Message: msg}
	}
	s.renderPage(w, r, http.StatusOK, flash, "")
}

// renderPage renders the index page with an optional flash message.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, flash *templates.Flash, path string) {
	activity, err := s.service.Activity(r.Context(), activityLimit)
	if err != nil {
		logging.FromContext(r.Context()).Warn("failed to list activity", "error", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	page := templates.Page(templates.PageData{
		Session:     s.service.Snapshot(),
		Flash:       flash,
		PreviewRows: s.cfg.Files.PreviewRows,
		Activity:    activity,
		Gate:        s.service.GateStatus(),
		LoadPath:    path,
	})
	if err := page.Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("failed to render page", "error", err)
	}
}

// redirectDone sends the browser back to the index page after a successful
// form post.
func redirectDone(w http.ResponseWriter, r *http.Request, action string) {
	http.Redirect(w, r, "/?done="+url.QueryEscape(action), http.StatusSeeOther)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSpace(r.PostFormValue("path"))
	if path == "" {
		s.renderPage(w, r, http.StatusBadRequest, &templates.Flash{
			Error:   true,
			Message: "Please enter a file path",
			Action:  "Type the path of a .csv, .xlsx or .json file",
		}, "")
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Load(ctx, path, r.PostFormValue("sheet")); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectDone(w, r, "load")
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Rename(ctx, renameMappings(r.PostForm)); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectDone(w, r, "rename")
}

// renameMappings reads the rename form. The form repeats a hidden "column"
// and a "new_name" field per column; "select" holds the checked columns.
func renameMappings(form url.Values) []table.Mapping {
	selected := make(map[string]bool)
	for _, name := range form["select"] {
		selected[name] = true
	}
	columns := form["column"]
	newNames := form["new_name"]

	var mappings []table.Mapping
	for i, col := range columns {
		if !selected[col] {
			continue
		}
		var newName string
		if i < len(newNames) {
			newName = newNames[i]
		}
		mappings = append(mappings, table.Mapping{Column: col, NewName: newName})
	}
	return mappings
}

func (s *Server) handleClean(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Clean(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectDone(w, r, "clean")
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	if _, err := s.service.Export(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectDone(w, r, "export")
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	ctx := WithRequestMetadata(r.Context(), r)
	if err := s.service.Reset(ctx); err != nil {
		s.respondError(w, r, err)
		return
	}
	redirectDone(w, r, "reset")
}

// handleDownload serves the bytes of the last export.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	exp, err := s.service.Download()
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", exp.Format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": exp.Name}))
	w.Header().Set("Content-Length", strconv.Itoa(len(exp.Data)))
	if _, err := w.Write(exp.Data); err != nil {
		logging.FromContext(r.Context()).Warn("download interrupted", "error", err)
	}
}
