package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"artisan/internal/middleware"
	"artisan/internal/model"
	"artisan/internal/service"
)

type ProjectHandler struct {
	projects *service.ProjectService
	messages *service.MessageService
	media    *service.MediaService
}

func NewProjectHandler(projects *service.ProjectService, messages *service.MessageService, media *service.MediaService) *ProjectHandler {
	return &ProjectHandler{projects: projects, messages: messages, media: media}
}

// List handles GET /api/projects
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "authentication required")
		return
	}
	projects, err := h.projects.ListForUser(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// Get handles GET /api/projects/{project_id} and returns the project with
// its full message history.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "authentication required")
		return
	}
	projectID := chi.URLParam(r, "project_id")
	project, err := h.projects.GetForUser(r.Context(), projectID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	messages, err := h.messages.ListByProject(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []model.Message{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project, "messages": messages})
}

// Media handles GET /api/projects/{project_id}/media
func (h *ProjectHandler) Media(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "authentication required")
		return
	}
	projectID := chi.URLParam(r, "project_id")
	if _, err := h.projects.GetForUser(r.Context(), projectID, user.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	files, err := h.media.ListByProject(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if files == nil {
		files = []model.MediaFile{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"media": files})
}

// Delete handles DELETE /api/projects/{project_id}
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "authentication required")
		return
	}
	projectID := chi.URLParam(r, "project_id")
	if err := h.projects.Delete(r.Context(), projectID, user.ID); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
