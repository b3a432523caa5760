package adapthttp

import (
	"net/http"
)

const apiVersion = "1.0.0"

func (s *Server) handleBanner(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "SaaS Blueprint Generator API",
		"version": apiVersion,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSuggestion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	ctx := r.Context()
	suggestion, err := s.assistant.Suggestion(ctx, userFromContext(ctx).ID)
	if err != nil {
		s.writeServiceError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, suggestion)
}
