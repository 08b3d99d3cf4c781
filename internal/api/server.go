// Package api provides the HTTP API server and handlers for the Reading KG application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/readingkg/readingkg-server/internal/config"
	"github.com/readingkg/readingkg-server/internal/search"
	"github.com/readingkg/readingkg-server/internal/service"
	"github.com/readingkg/readingkg-server/internal/store"
	"github.com/readingkg/readingkg-server/internal/sync"
)

// Services bundles the application services used by the handlers.
type Services struct {
	Events *service.EventService
	Books  *service.BookService
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	services *Services
	searcher *search.Orchestrator
	engine   *sync.Engine
	pinger   store.Pinger
	auth     config.AuthConfig
	router   *chi.Mux
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(services *Services, searcher *search.Orchestrator, engine *sync.Engine, pinger store.Pinger, auth config.AuthConfig, logger *slog.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig("Reading KG API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:   "http",
			Scheme: "bearer",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		services: services,
		searcher: searcher,
		engine:   engine,
		pinger:   pinger,
		auth:     auth,
		router:   router,
		api:      humaAPI,
		logger:   logger,
	}

	s.registerHealthRoutes()
	s.registerEventRoutes()
	s.registerBookRoutes()
	s.registerSearchRoutes()
	s.registerSyncRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
