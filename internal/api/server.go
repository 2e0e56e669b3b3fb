// Package api exposes the course generation pipeline over HTTP: asynchronous
// generation tasks, synchronous builds from authored documents, and package
// downloads.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/akozlov/scormgen/internal/config"
	"github.com/akozlov/scormgen/internal/generate"
	"github.com/akozlov/scormgen/internal/llm"
	"github.com/akozlov/scormgen/internal/scorm"
)

// Server is the HTTP API server for scormgen.
type Server struct {
	router  chi.Router
	llm     *llm.Client
	builder *scorm.Builder
	tasks   *TaskStore
	log     *slog.Logger
	cfg     config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(client *llm.Client, builder *scorm.Builder, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		llm:     client,
		builder: builder,
		tasks:   NewTaskStore(cfg.TaskTTL),
		log:     log,
		cfg:     cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start runs background maintenance until ctx is cancelled.
func (s *Server) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tasks.Cleanup()
			}
		}
	}()
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)

	// Authenticated endpoints.
	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(s.cfg.APIKey, s.log))

		r.Post("/api/generate", s.handleGenerate)
		r.Get("/api/tasks/{taskID}", s.handleTaskStatus)
		r.Post("/api/build", s.handleBuild)
		r.Get("/api/download/{filename}", s.handleDownload)
		r.Get("/api/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// defaultParams fills request params that were left unset from the service
// configuration.
func (s *Server) defaultParams(p *generate.Params) {
	if p.Modules <= 0 {
		p.Modules = s.cfg.DefaultModules
	}
	if p.SectionsPerModule <= 0 {
		p.SectionsPerModule = s.cfg.SectionsPerModule
	}
	if p.UnitsPerSection <= 0 {
		p.UnitsPerSection = s.cfg.UnitsPerSection
	}
	if p.ScreensPerUnit <= 0 {
		p.ScreensPerUnit = s.cfg.ScreensPerUnit
	}
	if p.QuestionsPerUnit <= 0 {
		p.QuestionsPerUnit = s.cfg.QuestionsPerUnit
	}
	if p.Temperature <= 0 {
		p.Temperature = s.cfg.Temperature
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = s.cfg.MaxTokens
	}
	if p.Settings == nil {
		settings := s.cfg.Settings()
		p.Settings = &settings
	}
}
