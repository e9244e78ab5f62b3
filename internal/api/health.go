package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HealthHandler reports whether the database is reachable
type HealthHandler struct {
	ping func(ctx context.Context) error
	log  *zap.Logger
}

func NewHealthHandler(ping func(ctx context.Context) error, log *zap.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, log: log}
}

func (h *HealthHandler) RegisterRoutes(rg gin.IRoutes) {
	handle(rg, "/healthz", methods{http.MethodGet: {h.Health}})
}

func (h *HealthHandler) Health(c *gin.Context) {
	if err := h.ping(c.Request.Context()); err != nil {
		h.log.Error("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
