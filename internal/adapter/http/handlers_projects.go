package adapthttp

import (
	"net/http"
)

const (
	projectNotFound = "Project not found"
	taskNotFound    = "Task not found"
)

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	user := userFromContext(ctx)

	switch r.Method {
	case http.MethodGet:
		projects, err := s.projects.List(ctx, user.ID)
		if err != nil {
			s.writeServiceError(w, r, err, projectNotFound)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"projects": projects})

	case http.MethodPost:
		var body struct {
			Title       string `json:"title"`
			Description string `json:"description"`
		}
		if err := parseJSON(r, &body); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		res, err := s.projects.Create(ctx, user.ID, body.Title, body.Description)
		if err != nil {
			s.writeServiceError(w, r, err, projectNotFound)
			return
		}
		writeJSON(w, http.StatusOK, res)

	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleProject(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	ctx := r.Context()
	detail, err := s.projects.Get(ctx, userFromContext(ctx).ID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": detail})
}

func (s *Server) handleProjectFlow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	ctx := r.Context()
	flow, err := s.projects.Flow(ctx, userFromContext(ctx).ID, r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err, projectNotFound)
		return
	}
	writeJSON(w, http.StatusOK, flow)
}
