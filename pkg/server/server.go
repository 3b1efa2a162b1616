// Package server exposes the temporal network API over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/ktbn/pkg/config"
	"github.com/soundprediction/ktbn/pkg/server/handlers"
	"github.com/soundprediction/ktbn/pkg/types"
)

// Server represents the HTTP server.
type Server struct {
	config   *config.Config
	router   *gin.Engine
	registry *handlers.Registry
	server   *http.Server
}

// New creates a new server instance.
func New(cfg *config.Config, logger *slog.Logger) *Server {
	return &Server{
		config:   cfg,
		registry: handlers.NewRegistry(logger),
	}
}

// Setup sets up the server routes and middleware.
func (s *Server) Setup() {
	gin.SetMode(s.config.Server.Mode)

	s.router = gin.New()
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(contextMiddleware())

	s.setupRoutes()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler()
	networksHandler := handlers.NewNetworksHandler(s.registry)

	s.router.GET("/health", healthHandler.HealthCheck)

	api := s.router.Group("/api/v1")
	{
		api.POST("/networks", networksHandler.Create)
		api.GET("/networks", networksHandler.List)
		api.GET("/networks/:id", networksHandler.Get)
		api.DELETE("/networks/:id", networksHandler.Delete)

		api.POST("/networks/:id/variables", networksHandler.AddVariable)
		api.DELETE("/networks/:id/variables/:name", networksHandler.RemoveVariable)

		api.GET("/networks/:id/arcs", networksHandler.ListArcs)
		api.POST("/networks/:id/arcs", networksHandler.AddArc)
		api.DELETE("/networks/:id/arcs", networksHandler.RemoveArc)

		api.GET("/networks/:id/cpt/:name/:slice", networksHandler.GetCPT)
		api.PUT("/networks/:id/cpt/:name/:slice", networksHandler.FillCPT)

		api.POST("/networks/:id/unroll", networksHandler.Unroll)
	}
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Start begins serving requests and blocks until shutdown.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// contextMiddleware tags requests so telemetry can attribute log records.
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.WithValue(c.Request.Context(), types.ContextKeyRequestSource, "http")
		if id := c.Param("id"); id != "" {
			ctx = context.WithValue(ctx, types.ContextKeyNetworkID, id)
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
