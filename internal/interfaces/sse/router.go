package sse

import (
	"github.com/gin-gonic/gin"

	"go-user-notify/internal/infrastructure/hub"
	"go-user-notify/internal/infrastructure/logger"
)

// InitSSERouter initializes SSE routes
func InitSSERouter(log logger.Logger, registry *hub.Registry, rg *gin.RouterGroup) {
	handler := NewServerSentEventHandler(registry, log)

	sseGroup := rg.Group("/events")
	sseGroup.GET("", handler.Connect)
}
