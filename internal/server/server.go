// Package server exposes the advising pipeline over HTTP: the chat API,
// quick replies, feedback, session management, a WebSocket transport, and
// the knowledge-base admin endpoints.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/halbot/hal-advisor/internal/analytics"
	"github.com/halbot/hal-advisor/internal/knowledge"
	"github.com/halbot/hal-advisor/internal/pipeline"
	"github.com/halbot/hal-advisor/internal/quickreplies"
)

// Config holds server configuration.
type Config struct {
	Port     int
	AllowAll bool // allow all CORS origins (dev mode)
}

// Server wires the pipeline and feature packages to a chi router.
type Server struct {
	cfg        Config
	pipe       *pipeline.Pipeline
	suggester  *quickreplies.Suggester
	knowledge  *knowledge.Store
	analytics  *analytics.Store
	router     chi.Router
	httpServer *http.Server
}

// New creates a server with all dependencies.
func New(cfg Config, pipe *pipeline.Pipeline, suggester *quickreplies.Suggester, kb *knowledge.Store, stats *analytics.Store) *Server {
	s := &Server{
		cfg:       cfg,
		pipe:      pipe,
		suggester: suggester,
		knowledge: kb,
		analytics: stats,
	}
	s.router = s.buildRouter()
	return s
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Post("/api/chat", s.handleChat)
	r.Get("/api/quickreplies", s.handleQuickReplies)
	r.Delete("/api/session/{id}", s.handleClearSession)
	r.Get("/ws", s.handleWebSocket)

	knowledge.RegisterRoutes(r, s.knowledge)
	analytics.RegisterRoutes(r, s.analytics)

	return r
}

// Router returns the chi router, for tests and route registration.
func (s *Server) Router() chi.Router { return s.router }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("hal server listening on %s", addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
