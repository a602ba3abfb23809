package web

import (
	"net/http"

	"github.com/go-chi/render"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status    string `json:"status"`
	Operation string `json:"operation,omitempty"`
	Loaded    bool   `json:"loaded"`
}

// handleHealth reports liveness and the running operation.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	gate := s.service.GateStatus()
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Operation: gate.Operation,
		Loaded:    s.service.Snapshot().HasTable(),
	})
}
