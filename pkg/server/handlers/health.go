package handlers

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/soundprediction/cogito"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	engine cogito.Engine
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(e cogito.Engine) *HealthHandler {
	return &HealthHandler{
		engine: e,
	}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "cogito",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// ReadinessCheck handles GET /ready
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	response := gin.H{
		"status":    "ready",
		"service":   "cogito",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks":    gin.H{},
	}

	allHealthy := true
	checks := response["checks"].(gin.H)

	if h.engine != nil {
		historyStart := time.Now()

		// Probe the snapshot store with a graph id that never exists. A not
		// found result still proves the store answers.
		_, err := h.engine.SnapshotVersions(ctx, "health-check-non-existent-id")
		historyDuration := time.Since(historyStart)

		switch {
		case err != nil && ctx.Err() != nil:
			checks["history"] = gin.H{
				"status":   "unhealthy",
				"error":    "snapshot store timeout",
				"duration": historyDuration.String(),
			}
			allHealthy = false
		case errors.Is(err, cogito.ErrNoHistory):
			checks["history"] = gin.H{
				"status":   "disabled",
				"duration": historyDuration.String(),
			}
		default:
			checks["history"] = gin.H{
				"status":   "healthy",
				"duration": historyDuration.String(),
			}
		}
	} else {
		checks["engine"] = gin.H{
			"status": "unhealthy",
			"error":  "engine client not initialized",
		}
		allHealthy = false
	}

	if !allHealthy {
		response["status"] = "not_ready"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "cogito",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// DetailedHealthCheck handles GET /health/detailed - comprehensive health information
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	start := time.Now()
	response := gin.H{
		"status":  "healthy",
		"service": "cogito",
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"metrics": gin.H{},
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	metrics := response["metrics"].(gin.H)
	metrics["goroutines"] = runtime.NumGoroutine()
	metrics["heap_alloc_bytes"] = memStats.HeapAlloc
	metrics["response_time_ms"] = time.Since(start).Milliseconds()

	c.JSON(http.StatusOK, response)
}
