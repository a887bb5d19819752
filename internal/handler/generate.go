package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"artisan/internal/middleware"
	"artisan/internal/model"
	"artisan/internal/service"
	"artisan/internal/stream"
)

// runTimeout bounds a detached agent run. Generous because a single run can
// chain many long media generations.
const runTimeout = 30 * time.Minute

type GenerateHandler struct {
	db       *sql.DB
	projects *service.ProjectService
	messages *service.MessageService
	runner   *service.Runner
	broker   *stream.Broker
}

func NewGenerateHandler(db *sql.DB, projects *service.ProjectService, messages *service.MessageService, runner *service.Runner, broker *stream.Broker) *GenerateHandler {
	return &GenerateHandler{db: db, projects: projects, messages: messages, runner: runner, broker: broker}
}

type generateRequest struct {
	ID       string          `json:"id"`
	Messages []model.Message `json:"messages"`
}

// Generate handles POST /api/generate. It persists the incoming messages,
// starts a detached agent run and streams the run's events back over SSE.
// The run outlives this request; a disconnected client resumes via the
// stream endpoint.
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFromCtx(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "E_UNAUTHORIZED", "authentication required")
		return
	}

	var in generateRequest
	if err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", err.Error())
		return
	}
	if in.ID == "" {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "project id is required")
		return
	}
	if len(in.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "messages are required")
		return
	}

	project, err := h.projects.Get(r.Context(), in.ID)
	var notFound *model.NotFoundError
	switch {
	case errors.As(err, &notFound):
		// First contact: the client minted the project id.
		project, err = h.projects.CreateWithID(r.Context(), in.ID, user.ID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
	case err != nil:
		writeServiceError(w, err)
		return
	case project.UserID != user.ID:
		writeError(w, http.StatusForbidden, "E_FORBIDDEN", "project belongs to another user")
		return
	}

	last := in.Messages[len(in.Messages)-1]
	if last.Role != model.MessageRoleUser || !last.HasUserContent() {
		writeError(w, http.StatusBadRequest, "E_BAD_REQUEST", "last message must be a user message with text or a file")
		return
	}

	if err := h.persistMessages(r.Context(), project.ID, in.Messages); err != nil {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", err.Error())
		return
	}

	streamID := uuid.NewString()
	traceID := middleware.TraceIDFromCtx(r.Context())
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()
		h.runner.Run(middleware.WithTraceID(ctx, traceID), project, streamID)
	}()

	serveSSE(w, r, h.broker, streamID)
}

// persistMessages upserts the full request message set in one transaction so
// a retry with the same ids replaces rather than duplicates.
func (h *GenerateHandler) persistMessages(ctx context.Context, projectID string, msgs []model.Message) error {
	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for i := range msgs {
		msgs[i].ProjectID = projectID
		if msgs[i].ID == "" {
			msgs[i].ID = uuid.NewString()
		}
		if !msgs[i].Role.Valid() {
			return fmt.Errorf("invalid message role %q", msgs[i].Role)
		}
		if err := h.messages.UpsertTx(ctx, tx, &msgs[i]); err != nil {
			return fmt.Errorf("upsert message %s: %w", msgs[i].ID, err)
		}
	}
	return tx.Commit()
}

// serveSSE subscribes to a run's event stream and relays it to the client
// until the stream terminates or the client goes away.
func serveSSE(w http.ResponseWriter, r *http.Request, broker *stream.Broker, streamID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "E_INTERNAL", "streaming not supported")
		return
	}

	ch, cancel, err := broker.Subscribe(r.Context(), streamID)
	if err != nil {
		log.Printf("subscribe stream=%s: %v", streamID, err)
		writeError(w, http.StatusServiceUnavailable, "E_UNAVAILABLE", "stream unavailable")
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return

		case <-ticker.C:
			fmt.Fprintf(w, ":keepalive\n\n")
			flusher.Flush()

		case payload, open := <-ch:
			if !open {
				// Channel close means the stream terminated.
				fmt.Fprintf(w, "data: %s\n\n", stream.Terminator)
				flusher.Flush()
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", payload)
			flusher.Flush()
		}
	}
}
