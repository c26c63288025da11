package websocket

import (
	"crypto/rand"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"go-user-notify/internal/infrastructure/hub"
	"go-user-notify/internal/infrastructure/logger"
)

// WebSocketHandler upgrades HTTP requests and registers the resulting
// connections. Every registered connection receives all broadcasts published
// after its registration; there is no replay.
type WebSocketHandler struct {
	registry *hub.Registry
	logger   logger.Logger
	upgrader websocket.Upgrader
}

func NewWebSocketHandler(registry *hub.Registry, log logger.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		registry: registry,
		logger:   log.WithField("handler", "websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from any origin for development
				// In production, you should implement proper origin checking
				return true
			},
		},
	}
}

// Connect handles WebSocket connection upgrade requests.
func (h *WebSocketHandler) Connect(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Errorf("Failed to upgrade connection: %v", err)
		return
	}

	connID := generateConnectionID("ws")
	wsConn := hub.NewWebSocketConnection(connID, conn, hub.DefaultSendQueueSize, h.logger)

	if err := h.registry.Register(wsConn); err != nil {
		h.logger.Errorf("Failed to register WebSocket connection: %v", err)
		wsConn.Close()
		return
	}

	h.logger.Infof("WebSocket connection %s connected and registered", wsConn.ID())

	// Keep the connection alive until client disconnects
	<-wsConn.Context().Done()
	h.logger.Infof("WebSocket connection %s disconnected", wsConn.ID())
}

// Status returns information about live connections.
func (h *WebSocketHandler) Status(c *gin.Context) {
	connections := make([]gin.H, 0, h.registry.Count())
	h.registry.ForEach(func(conn hub.Connection) {
		connections = append(connections, gin.H{
			"id":    conn.ID(),
			"type":  conn.Type(),
			"state": conn.State().String(),
		})
	})

	c.JSON(http.StatusOK, gin.H{
		"total_connections": len(connections),
		"connections":       connections,
	})
}

func generateConnectionID(prefix string) string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("%s-%x", prefix, b)
}
