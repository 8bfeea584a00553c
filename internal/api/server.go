// Package api provides the NewsNinja HTTP API.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/pipeline"
)

// Generator runs briefing requests.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
	GenerateFallback(ctx context.Context, req pipeline.Request) (*pipeline.Result, error)
}

// Options configure the server.
type Options struct {
	// Fallback serves the model-free pipeline and exposes /health.
	Fallback bool
	// AllowOrigin enables CORS for one browser origin. Empty disables CORS.
	AllowOrigin string
	Logger      *slog.Logger
}

// Server holds the dependencies for the API.
type Server struct {
	gen    Generator
	opts   Options
	logger *slog.Logger
}

// NewServer creates a new API Server instance.
func NewServer(gen Generator, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{gen: gen, opts: opts, logger: logger}
}

// Routes returns the configured http.Handler for the API.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /generate-news-audio", s.handleGenerateAudio())
	if s.opts.Fallback {
		mux.HandleFunc("GET /health", s.handleHealth())
	}

	var h http.Handler = mux
	if s.opts.AllowOrigin != "" {
		h = corsMiddleware(s.opts.AllowOrigin, h)
	}
	return s.requestID(s.recoverer(h))
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"message": "NewsNinja Fallback API is running",
		})
	}
}

// --- Helpers ---

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func respondError(w http.ResponseWriter, status int, detail string) {
	respondJSON(w, status, map[string]string{"detail": detail})
}
