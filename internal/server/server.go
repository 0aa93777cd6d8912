// Package server provides the web preview of a running session.
package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ayusman/fingerfold/internal/logger"
	"github.com/ayusman/fingerfold/internal/metrics"
	"github.com/ayusman/fingerfold/internal/store"
)

//go:embed static
var staticFiles embed.FS

// Config holds the server configuration. Nil components disable their routes.
type Config struct {
	// StaticDir replaces the built-in preview page when set.
	StaticDir string
	Frames    *FrameHub
	Readings  *ReadingsHub
	Metrics   *metrics.Metrics
	Store     *store.Store
	Logger    *slog.Logger
}

// Server represents the HTTP server for the web preview.
type Server struct {
	config Config
	router chi.Router
	log    *slog.Logger
	start  time.Time
	srv    *http.Server
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	log := config.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		config: config,
		router: chi.NewRouter(),
		log:    log,
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	r := s.router
	r.Use(logger.RequestLogger(s.log))

	r.Get("/api/health", s.handleHealth)

	if s.config.Frames != nil {
		r.Get("/api/stream", s.config.Frames.ServeHTTP)
	}
	if s.config.Readings != nil {
		r.Get("/api/fingers", s.config.Readings.ServeHTTP)
	}
	if s.config.Metrics != nil {
		r.Get("/metrics", s.config.Metrics.Handler(func() {
			s.config.Metrics.SetPreviewClients(s.previewClients())
		}).ServeHTTP)
	}
	if s.config.Store != nil {
		h := NewSessionsHandler(s.config.Store)
		r.Route("/api/sessions", func(r chi.Router) {
			r.Get("/", h.List)
			r.Route("/{session_id}", func(r chi.Router) {
				r.Get("/", h.Get)
				r.Get("/readings", h.Readings)
			})
		})
	}

	var root http.FileSystem
	if s.config.StaticDir != "" {
		root = http.Dir(s.config.StaticDir)
	} else {
		sub, _ := fs.Sub(staticFiles, "static")
		root = http.FS(sub)
	}
	r.Get("/*", http.FileServer(root).ServeHTTP)
}

func (s *Server) previewClients() int {
	n := 0
	if s.config.Frames != nil {
		n += s.config.Frames.Clients()
	}
	if s.config.Readings != nil {
		n += s.config.Readings.Clients()
	}
	return n
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// Start listens on addr and serves in a background goroutine. It returns the
// bound address, which differs from addr when addr uses port 0.
func (s *Server) Start(addr string) (string, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", err
	}

	s.srv = &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("web preview server error", slog.Any("error", err))
		}
	}()

	s.log.Info("web preview listening", slog.String("addr", ln.Addr().String()))
	return ln.Addr().String(), nil
}

// Shutdown stops a server started with Start. Streaming clients are
// disconnected by closing the hubs first.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.config.Frames != nil {
		s.config.Frames.Close()
	}
	if s.config.Readings != nil {
		s.config.Readings.Close()
	}
	if s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
