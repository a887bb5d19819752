package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"artisan/internal/middleware"
	"artisan/internal/service"
	"artisan/internal/stream"
)

type StreamHandler struct {
	projects *service.ProjectService
	broker   *stream.Broker
}

func NewStreamHandler(projects *service.ProjectService, broker *stream.Broker) *StreamHandler {
	return &StreamHandler{projects: projects, broker: broker}
}

// Resume handles GET /api/generate/{project_id}/stream. It replays the
// project's active stream from the beginning and tails live events, so a
// client that lost its connection mid-run picks up where the run actually is.
func (h *StreamHandler) Resume(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "authentication required")
		return
	}

	projectID := chi.URLParam(r, "project_id")
	if projectID == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "project id is required")
		return
	}

	project, err := h.projects.GetForUser(r.Context(), projectID, user.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if project.StreamID == nil || *project.StreamID == "" {
		writeError(w, http.StatusBadRequest, "E_NO_STREAM", "Stream not available")
		return
	}

	exists, err := h.broker.Exists(r.Context(), *project.StreamID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "E_UNAVAILABLE", "stream unavailable")
		return
	}
	if !exists {
		writeError(w, http.StatusServiceUnavailable, "E_UNAVAILABLE", "stream expired")
		return
	}

	serveSSE(w, r, h.broker, *project.StreamID)
}
