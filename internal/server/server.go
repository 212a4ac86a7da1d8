package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/lazypower/pulse/internal/engine"
	perrors "github.com/lazypower/pulse/internal/errors"
	"github.com/lazypower/pulse/internal/store"
)

// Server is the pulse HTTP API server.
type Server struct {
	db      *store.DB
	engine  *engine.Engine
	logger  *zap.Logger
	router  chi.Router
	version string
	started time.Time
}

// New creates a new Server over the corpus database and analytics engine.
func New(db *store.DB, eng *engine.Engine, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		db:      db,
		engine:  eng,
		logger:  logger,
		version: version,
		started: time.Now(),
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/stats", s.handleStats)

		// Capture: sessions and their messages
		r.Post("/sessions/init", s.handleSessionInit)
		r.Get("/sessions", s.handleRecentSessions)
		r.Post("/sessions/{sessionID}/messages", s.handleAddMessage)
		r.Post("/sessions/{sessionID}/complete", s.handleCompleteSession)
		r.Post("/sessions/{sessionID}/end", s.handleEndSession)
		r.Get("/context", s.handleGetContext)

		// Analytics
		r.Get("/analysis/stress", s.handleStress)
		r.Get("/analysis/cause", s.handleCause)
		r.Get("/analysis/sweep", s.handleSweep)
		r.Get("/analysis/{domain}", s.handleDomain)
		r.Get("/profile", s.handleProfile)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbOK := true
	if err := s.db.PingContext(r.Context()); err != nil {
		dbOK = false
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"uptime":  time.Since(s.started).Seconds(),
		"db":      dbOK,
		"db_path": s.db.Path,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.db.Stats(r.Context())
	if err != nil {
		s.writeError(w, r, perrors.NewUnavailable("corpus stats", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps coded errors to HTTP statuses: validation → 400,
// unavailable → 503, anything else → 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	body := map[string]string{
		"error": err.Error(),
		"code":  string(perrors.CodeOf(err)),
	}
	status := http.StatusInternalServerError

	var pe *perrors.Error
	if errors.As(err, &pe) && pe.Field != "" {
		body["field"] = pe.Field
	}
	switch {
	case perrors.IsValidation(err):
		status = http.StatusBadRequest
	case perrors.IsUnavailable(err):
		status = http.StatusServiceUnavailable
	}

	if status >= http.StatusInternalServerError {
		s.logger.Warn("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err))
	}
	writeJSON(w, status, body)
}
