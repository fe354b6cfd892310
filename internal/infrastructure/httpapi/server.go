package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"stockpulse/internal/config"
	"stockpulse/internal/state"
)

// Server exposes the aggregated pipeline state over a read-only HTTP API.
// It only ever reads; all writes happen on the scheduler's goroutine.
type Server struct {
	server *http.Server
	router *chi.Mux
}

// NewServer builds the HTTP server around the shared pipeline state.
func NewServer(cfg config.ServerConfig, pipelineState *state.State) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Timeout(30 * time.Second))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	handler := NewStateHandler(pipelineState)

	router.Route("/api", func(r chi.Router) {
		r.Get("/health", handler.GetHealth)

		r.Route("/v1", func(r chi.Router) {
			r.Get("/analyses", handler.GetAnalyses)
			r.Get("/counts", handler.GetCounts)
			r.Get("/frequencies", handler.GetFrequencies)
		})
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return &Server{
		server: httpServer,
		router: router,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
