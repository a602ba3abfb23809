package web

// errors.go maps service errors to HTTP responses.
//
// The flow:
//  1. Handler receives an error from core.Service
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via core.MapError to a user message and code
//  4. Technical error is logged with the request ID for correlation
//  5. JSON clients get an ErrorResponse; form posts get the page with the
//     message shown as a flash

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/JonMunkholm/datatidy/internal/core"
	"github.com/JonMunkholm/datatidy/internal/logging"
	"github.com/JonMunkholm/datatidy/internal/table"
	"github.com/JonMunkholm/datatidy/internal/web/templates"
)

// ErrorResponse is the JSON body of API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor returns the HTTP status for a service error.
func statusFor(err error) int {
	var (
		readErr  *core.ReadError
		writeErr *core.WriteError
	)
	switch {
	case errors.Is(err, core.ErrBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, core.ErrNoTable), errors.Is(err, core.ErrNotCleaned), errors.Is(err, core.ErrNoExport):
		return http.StatusConflict
	case errors.Is(err, core.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, core.ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, table.ErrDuplicateColumn):
		return http.StatusUnprocessableEntity
	case errors.As(err, &readErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &writeErr):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes a response in the format the client
// expects.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	userMsg := core.MapError(err)

	level := slog.LevelWarn
	if !core.IsUserFacing(err) {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", userMsg.Code,
	)

	if wantsJSON(r) {
		respondErrorJSON(w, r, userMsg, status)
		return
	}
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	s.renderPage(w, r, status, &templates.Flash{
		Error:   true,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}, r.PostFormValue("path"))
}

// respondErrorJSON writes a JSON error response.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, msg core.UserMessage, status int) {
	if status == http.StatusServiceUnavailable {
		w.Header().Set("Retry-After", "5")
	}
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

// badRequest writes a JSON validation error.
func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	respondErrorJSON(w, r, core.UserMessage{
		Message: message,
		Action:  "Check the request body",
		Code:    "REQ001",
	}, http.StatusBadRequest)
}

// wantsJSON checks if the client prefers a JSON response.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
