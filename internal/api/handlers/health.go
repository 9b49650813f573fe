package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/apostai/engine/internal/services"
	"github.com/apostai/engine/internal/websocket"
	"github.com/apostai/engine/pkg/database"
)

type HealthHandler struct {
	db        *database.DB
	redis     *redis.Client
	breakers  *services.CircuitBreakerService
	refresher *services.RefreshService
	hub       *websocket.AnalysisHub
}

func NewHealthHandler(db *database.DB, redisClient *redis.Client, breakers *services.CircuitBreakerService, refresher *services.RefreshService, hub *websocket.AnalysisHub) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redisClient,
		breakers:  breakers,
		refresher: refresher,
		hub:       hub,
	}
}

// GetHealth is the liveness probe. Always 200 while the process runs.
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "apostai-engine",
		"time":    time.Now().UTC(),
	})
}

// GetStatus reports dependency health for the readiness probe.
func (h *HealthHandler) GetStatus(c *gin.Context) {
	ctx := c.Request.Context()
	status := http.StatusOK

	dbStatus := "ok"
	if err := h.db.Ping(ctx); err != nil {
		dbStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	redisStatus := "ok"
	if err := h.redis.Ping(ctx).Err(); err != nil {
		redisStatus = "unreachable"
		status = http.StatusServiceUnavailable
	}

	payload := gin.H{
		"database":       dbStatus,
		"redis":          redisStatus,
		"breakers":       h.breakers.States(),
		"ws_connections": h.hub.GetConnectionCount(),
	}
	if h.refresher != nil {
		payload["refresher"] = h.refresher.Status()
	}

	c.JSON(status, payload)
}
