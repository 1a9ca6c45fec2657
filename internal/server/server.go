// Package server serves the cover letter wizard and its JSON API.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/amishk599/coverletter/internal/config"
	"github.com/amishk599/coverletter/internal/model"
	"github.com/amishk599/coverletter/internal/ratelimit"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	shutdownTimeout = 30 * time.Second
	pruneInterval   = 10 * time.Minute
)

// Options holds the collaborators a Server needs.
type Options struct {
	Config      config.ServerConfig
	DefaultTone model.Tone
	Writer      model.LetterWriter
	Extractor   model.TextExtractor
	JobPages    model.JobPageFetcher // nil disables URL import
	Logger      *slog.Logger

	// RetryDelay is advertised in Retry-After when upstream rate limiting
	// outlasted the retry budget and the upstream sent no Retry-After itself.
	RetryDelay time.Duration
}

// Server represents the HTTP server.
type Server struct {
	cfg         config.ServerConfig
	defaultTone model.Tone
	writer      model.LetterWriter
	extractor   model.TextExtractor
	jobPages    model.JobPageFetcher
	limiter     *ratelimit.Limiter
	retryDelay  time.Duration
	logger      *slog.Logger
	pages       *template.Template
	handler     http.Handler
}

// New creates a server and registers its routes.
func New(opts Options) *Server {
	s := &Server{
		cfg:         opts.Config,
		defaultTone: model.ParseTone(string(opts.DefaultTone)),
		writer:      opts.Writer,
		extractor:   opts.Extractor,
		jobPages:    opts.JobPages,
		retryDelay:  opts.RetryDelay,
		logger:      opts.Logger,
		pages:       template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}
	if opts.Config.ClientMinInterval > 0 {
		s.limiter = ratelimit.NewLimiter(opts.Config.ClientMinInterval)
	}

	mux := http.NewServeMux()

	// HTML wizard
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /wizard/cv", s.handleWizardCV)
	mux.HandleFunc("POST /wizard/job", s.handleWizardJob)
	mux.HandleFunc("GET /wizard/compose", s.handleWizardCompose)

	// JSON API
	mux.HandleFunc("POST /api/extract", s.handleExtract)
	mux.HandleFunc("POST /api/generate", s.handleGenerate)
	mux.HandleFunc("POST /api/job-description", s.handleJobDescription)
	mux.HandleFunc("GET /api/tones", s.handleTones)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.handler = s.withLogging(s.withRecover(mux))
	return s
}

// Handler returns the root handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run listens on the configured address until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	var ticker <-chan time.Time
	if s.limiter != nil {
		t := time.NewTicker(pruneInterval)
		defer t.Stop()
		ticker = t.C
	}

	for {
		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
		case <-ticker:
			if n := s.limiter.Prune(pruneInterval); n > 0 {
				s.logger.Debug("pruned idle clients", "removed", n)
			}
		case <-ctx.Done():
			s.logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown: %w", err)
			}
			return nil
		}
	}
}

// handleHealth returns server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response.
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode json response", "error", err)
	}
}

// errorResponse writes an error JSON response.
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
