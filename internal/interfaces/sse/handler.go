package sse

import (
	"crypto/rand"
	"fmt"
	"time"

	"github.com/gin-contrib/sse"
	"github.com/gin-gonic/gin"

	"go-user-notify/internal/infrastructure/hub"
	"go-user-notify/internal/infrastructure/logger"
)

// ServerSentEventHandler streams notifications to clients that cannot hold a
// WebSocket. Same registry, same broadcast path.
type ServerSentEventHandler struct {
	registry *hub.Registry
	logger   logger.Logger
}

func NewServerSentEventHandler(registry *hub.Registry, log logger.Logger) *ServerSentEventHandler {
	return &ServerSentEventHandler{
		registry: registry,
		logger:   log.WithField("handler", "sse"),
	}
}

// Connect handles SSE connection requests.
func (h *ServerSentEventHandler) Connect(c *gin.Context) {
	connID := generateConnectionID()
	conn := hub.NewSSEConnection(c.Request.Context(), connID, c.Writer, hub.DefaultSendQueueSize, h.logger)

	// Flush an initial event so the client sees the stream open immediately.
	// This happens before registration, while the write pump is still idle.
	sse.Encode(c.Writer, sse.Event{
		Event: "connected",
		Data: map[string]interface{}{
			"connection_id": conn.ID(),
			"timestamp":     time.Now().UTC().Format(time.RFC3339),
		},
	})
	c.Writer.Flush()

	if err := h.registry.Register(conn); err != nil {
		h.logger.Errorf("Failed to register SSE connection: %v", err)
		conn.Close()
		return
	}

	h.logger.Infof("SSE connection %s connected and registered", conn.ID())

	// Keep the handler alive until the client disconnects, then join the
	// write pump so the response writer is idle before the handler returns.
	<-conn.Context().Done()
	<-conn.Done()
	h.logger.Infof("SSE connection %s disconnected", conn.ID())
}

func generateConnectionID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return fmt.Sprintf("sse-%x", b)
}
