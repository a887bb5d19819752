package router

import (
	"database/sql"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"artisan/internal/config"
	"artisan/internal/handler"
	"artisan/internal/llm"
	"artisan/internal/middleware"
	"artisan/internal/service"
	"artisan/internal/stream"
	"artisan/internal/tools"
)

// New builds the HTTP router. The provider, tool registry and stream broker
// are created in main so the same instances can be shared with background
// components; services and handlers are wired here.
func New(cfg *config.Config, db *sql.DB, provider llm.Provider, toolReg *tools.Registry, broker *stream.Broker) http.Handler {
	sessionSvc := service.NewSessionService(db, cfg.DBDriver)
	projectSvc := service.NewProjectService(db, cfg.DBDriver)
	messageSvc := service.NewMessageService(db, cfg.DBDriver)
	mediaSvc := service.NewMediaService(db, cfg.DBDriver)
	titler := service.NewTitler(provider, cfg.LLMModel)
	runner := service.NewRunner(service.RunnerConfig{
		Projects: projectSvc,
		Messages: messageSvc,
		Media:    mediaSvc,
		Provider: provider,
		Tools:    toolReg,
		Broker:   broker,
		Titler:   titler,
		Model:    cfg.LLMModel,
		MaxSteps: cfg.MaxSteps,
	})

	healthH := handler.NewHealthHandler("0.1.0")
	generateH := handler.NewGenerateHandler(db, projectSvc, messageSvc, runner, broker)
	streamH := handler.NewStreamHandler(projectSvc, broker)
	projectH := handler.NewProjectHandler(projectSvc, messageSvc, mediaSvc)

	requireAuth := middleware.Auth(sessionSvc.ValidateToken)

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Trace)

	// Public
	r.Get("/health", healthH.Health)

	// Authenticated
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.Post("/api/generate", generateH.Generate)
		r.Get("/api/generate/{project_id}/stream", streamH.Resume)

		r.Get("/api/projects", projectH.List)
		r.Get("/api/projects/{project_id}", projectH.Get)
		r.Get("/api/projects/{project_id}/media", projectH.Media)
		r.Delete("/api/projects/{project_id}", projectH.Delete)
	})

	return r
}
