package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mpaterson/trackml/internal/domain"
)

// extractFeatures runs one track job synchronously and returns the bare
// prediction set on success, or {error, track} with a 500 on job failure.
func (s *Server) extractFeatures(c *gin.Context) {
	var req domain.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Both "artist" and "track_name" must be provided`})
		return
	}

	debug := c.Query("debug") == "1"
	result := s.processor.ProcessTrack(c.Request.Context(), req, debug)

	if result.Failed() {
		slog.Error("track processing failed", "track", result.Track, "error", result.Error)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": result.Error,
			"track": result.Track,
		})
		return
	}

	c.JSON(http.StatusOK, result.Features)
}

// extractFeaturesBatch runs one job per entry under the worker bound and
// always answers 200 with per-item success or error, in input order.
func (s *Server) extractFeaturesBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Missing or invalid "tracks" list`})
		return
	}

	if len(req.Tracks) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": `Missing or invalid "tracks" list`})
		return
	}

	debug := c.Query("debug") == "1"
	batch := s.processor.ProcessBatch(c.Request.Context(), req.Tracks, debug)

	c.JSON(http.StatusOK, batch)
}
