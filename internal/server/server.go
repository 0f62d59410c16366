package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ziadkadry99/compatbrowse/internal/browse"
	"github.com/ziadkadry99/compatbrowse/internal/store"
)

// Config holds server configuration.
type Config struct {
	Port     int
	RootURL  string // path the browse UI is mounted under
	AllowAll bool   // allow all CORS origins (dev mode)
}

// Server is the browse web frontend.
type Server struct {
	cfg        Config
	store      *store.Store
	browse     *browse.Handler
	router     chi.Router
	httpServer *http.Server
}

// New creates a server that renders records from s.
func New(cfg Config, s *store.Store) (*Server, error) {
	cfg.RootURL = "/" + strings.Trim(cfg.RootURL, "/")
	if cfg.RootURL == "/" {
		return nil, fmt.Errorf("root url must not be the site root")
	}

	b, err := browse.New(s, browse.Config{RootURL: cfg.RootURL})
	if err != nil {
		return nil, err
	}

	srv := &Server{cfg: cfg, store: s, browse: b}
	srv.router = srv.buildRouter()
	return srv, nil
}

// buildRouter creates and configures the chi router with all routes.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	corsOpts := cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "http://127.0.0.1:*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	if s.cfg.AllowAll {
		corsOpts.AllowedOrigins = []string{"*"}
	}
	r.Use(cors.Handler(corsOpts))

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status":          "ok",
			"cached_records":  s.store.Len(),
			"relation_routes": s.store.Routes().Len(),
		})
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.cfg.RootURL+"/", http.StatusFound)
	})
	r.Route(s.cfg.RootURL, s.browse.RegisterRoutes)

	return r
}

// Router returns the chi router for registering additional routes.
func (s *Server) Router() chi.Router { return s.router }

// ServerConfig returns the server configuration.
func (s *Server) ServerConfig() Config { return s.cfg }

// Start begins listening on the configured port.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	log.Printf("compatbrowse listening on %s%s/", addr, s.cfg.RootURL)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}
