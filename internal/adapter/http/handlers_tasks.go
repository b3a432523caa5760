package adapthttp

import (
	"net/http"
)

func (s *Server) handleProjectTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)
	projectID := r.PathValue("id")

	switch r.Method {
	case http.MethodGet:
		tasks, err := s.tasks.List(ctx, user.ID, projectID)
		if err != nil {
			s.writeServiceError(w, r, err, projectNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})

	case http.MethodPost:
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
			Priority    string `json:"priority"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		task, err := s.tasks.Create(ctx, user.ID, projectID, body.Title, body.Description, body.Priority)
		if err != nil {
			s.writeServiceError(w, r, err, projectNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"task": task})

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleTask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		methodNotAllowed(w, http.MethodPut)
		return
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := parseJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	ctx := r.Context()
	task, err := s.tasks.UpdateStatus(ctx, userFromContext(ctx).ID, r.PathValue("id"), body.Status)
	if err != nil {
		s.writeServiceError(w, r, err, taskNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}
