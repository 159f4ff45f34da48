package api

import (
	"net/http"
	"strings"
)

// LogActivityRequest is the body of POST /activity.
type LogActivityRequest struct {
	Message string `json:"message"`
}

// handleListActivity returns the activity log, newest first, as display lines.
func (s *Server) handleListActivity(w http.ResponseWriter, _ *http.Request) {
	lines := s.registry.ActivityLines()
	writeJSON(w, http.StatusOK, map[string]any{"entries": lines, "count": len(lines)})
}

// handleLogActivity appends a free-form note to the activity log.
func (s *Server) handleLogActivity(w http.ResponseWriter, r *http.Request) {
	var req LogActivityRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		writeValidationError(w, "message is required")
		return
	}

	entry := s.registry.LogActivity(msg)
	writeJSON(w, http.StatusCreated, map[string]any{"entry": entry.String()})
}
