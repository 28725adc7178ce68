package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service"`
	Version   string    `json:"version"`
	Store     string    `json:"store,omitempty"`
	Remote    string    `json:"remote,omitempty"`
}

type HealthHandler struct {
	serviceName   string
	version       string
	redis         *redis.Client
	remoteEnabled bool
}

func NewHealthHandler(serviceName, version string, rdb *redis.Client, remoteEnabled bool) *HealthHandler {
	return &HealthHandler{
		serviceName:   serviceName,
		version:       version,
		redis:         rdb,
		remoteEnabled: remoteEnabled,
	}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	storeStatus := "disabled"
	if h.redis != nil {
		pingCtx, cancel := context.WithTimeout(c.Request.Context(), 1*time.Second)
		defer cancel()

		if err := h.redis.Ping(pingCtx).Err(); err != nil {
			storeStatus = "down"
		} else {
			storeStatus = "up"
		}
	}

	remoteStatus := "disabled"
	if h.remoteEnabled {
		remoteStatus = "enabled"
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Service:   h.serviceName,
		Version:   h.version,
		Store:     storeStatus,
		Remote:    remoteStatus,
	})
}

func (h *HealthHandler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/healthz", h.HealthCheck)
}
