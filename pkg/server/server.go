package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/soundprediction/cogito"
	"github.com/soundprediction/cogito/pkg/config"
	"github.com/soundprediction/cogito/pkg/server/handlers"
	"github.com/soundprediction/cogito/pkg/types"
)

// Server represents the HTTP server
type Server struct {
	config *config.Config
	router *gin.Engine
	engine cogito.Engine
	server *http.Server
}

// New creates a new server instance
func New(cfg *config.Config, engine cogito.Engine) *Server {
	return &Server{
		config: cfg,
		engine: engine,
	}
}

// Setup sets up the server routes and middleware
func (s *Server) Setup() {
	// Set gin mode
	gin.SetMode(s.config.Server.Mode)

	// Create router
	s.router = gin.New()

	// Add middleware
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(corsMiddleware())
	s.router.Use(contextMiddleware())

	// Setup routes
	s.setupRoutes()

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.router,
	}
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// setupRoutes sets up all the routes
func (s *Server) setupRoutes() {
	// Create handlers
	healthHandler := handlers.NewHealthHandler(s.engine)
	engineHandler := handlers.NewEngineHandler(s.engine)

	// Health endpoints
	s.router.GET("/health", healthHandler.HealthCheck)
	s.router.GET("/healthcheck", healthHandler.HealthCheck) // Legacy endpoint
	s.router.GET("/ready", healthHandler.ReadinessCheck)
	s.router.GET("/live", healthHandler.LivenessCheck) // Kubernetes liveness probe
	s.router.GET("/health/detailed", healthHandler.DetailedHealthCheck)

	// API v1 routes
	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/validate", engineHandler.Validate)
		v1.POST("/revise", engineHandler.Revise)

		// Propagation routes
		propagate := v1.Group("/propagate")
		{
			propagate.POST("", engineHandler.Propagate)
			propagate.POST("/epistemic", engineHandler.PropagateEpistemic)
			propagate.POST("/causal", engineHandler.PropagateCausal)
		}

		// Analysis routes
		analyze := v1.Group("/analyze")
		{
			analyze.POST("/contradictions", engineHandler.Contradictions)
			analyze.POST("/connectivity", engineHandler.Connectivity)
			analyze.POST("/paths", engineHandler.Paths)
			analyze.POST("/metrics", engineHandler.Metrics)
		}

		// Snapshot routes
		snapshots := v1.Group("/snapshots")
		{
			snapshots.POST("/:graph_id", engineHandler.SaveSnapshot)
			snapshots.GET("/:graph_id", engineHandler.ListSnapshotVersions)
			snapshots.GET("/:graph_id/:version", engineHandler.GetSnapshot)
		}

		// Graph store routes
		graphs := v1.Group("/graphs")
		{
			graphs.PUT("/:graph_id", engineHandler.PersistGraph)
			graphs.GET("/:graph_id", engineHandler.FetchGraph)
			graphs.DELETE("/:graph_id", engineHandler.DeleteGraph)
		}
	}
}

// Start starts the server
func (s *Server) Start() error {
	fmt.Printf("Starting server on %s\n", s.server.Addr)
	return s.server.ListenAndServe()
}

// Stop stops the server gracefully
func (s *Server) Stop(ctx context.Context) error {
	fmt.Println("Stopping server...")
	return s.server.Shutdown(ctx)
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Graph-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

// contextMiddleware extracts context information from headers
func contextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		graphID := c.GetHeader("X-Graph-ID")
		if graphID == "" {
			graphID = c.Param("graph_id")
		}
		if graphID != "" {
			ctx = context.WithValue(ctx, types.ContextKeyGraphID, graphID)
		}

		ctx = context.WithValue(ctx, types.ContextKeyOperation, c.Request.Method+" "+c.Request.URL.Path)

		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
