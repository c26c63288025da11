package websocket

import (
	"github.com/gin-gonic/gin"

	"go-user-notify/internal/infrastructure/hub"
	"go-user-notify/internal/infrastructure/logger"
)

// InitWebSocketRouter initializes WebSocket routes
func InitWebSocketRouter(log logger.Logger, registry *hub.Registry, rg *gin.RouterGroup) {
	wsHandler := NewWebSocketHandler(registry, log)

	// WebSocket connection endpoint
	wsGroup := rg.Group("/ws")
	wsGroup.GET("", wsHandler.Connect)

	// WebSocket API endpoints (only connection info, no broadcast/send)
	apiGroup := rg.Group("/api/v1/ws")
	apiGroup.GET("/connections", wsHandler.Status)
}
