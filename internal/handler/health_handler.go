package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/balloon_quote/internal/utils"
)

var startTime = time.Now()

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

// HealthHandler provides health endpoint.
type HealthHandler struct {
	checks   map[string]HealthCheck
	sessions func() int
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(checks map[string]HealthCheck, sessions func() int) *HealthHandler {
	return &HealthHandler{checks: checks, sessions: sessions}
}

// GetHealth responds with the status of the database and the cache. The
// service stays healthy when a store is down because saves degrade.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	deps := gin.H{}
	status := "healthy"
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			deps[name] = gin.H{"status": "disconnected", "error": err.Error()}
			status = "degraded"
			continue
		}
		deps[name] = gin.H{"status": "connected"}
	}

	openSessions := 0
	if h.sessions != nil {
		openSessions = h.sessions()
	}

	utils.Success(c, 200, "Service is "+status, gin.H{
		"status":       status,
		"version":      "1.0.0",
		"uptime":       int(time.Since(startTime).Seconds()),
		"sessions":     openSessions,
		"dependencies": deps,
	})
}
