// Package server exposes the track feature prediction API over HTTP.
package server

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mpaterson/trackml/config"
	"github.com/mpaterson/trackml/internal/pipeline"
)

// Server handles HTTP requests for track feature prediction.
type Server struct {
	cfg       *config.Config
	router    *gin.Engine
	processor *pipeline.Processor
}

// New creates the HTTP server over a wired processor.
func New(cfg *config.Config, processor *pipeline.Processor) *Server {
	router := gin.Default()

	server := &Server{
		cfg:       cfg,
		router:    router,
		processor: processor,
	}

	server.setupRoutes(router)
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	// Add CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	router.GET("/health", s.health)
	router.POST("/extract_features", s.extractFeatures)
	router.POST("/extract_features_batch", s.extractFeaturesBatch)
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}

// health handles health check requests
func (s *Server) health(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
		"service":   "track-feature-predictor",
	})
}
