package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-user-notify/internal/infrastructure/logger"
)

// MessageNotifier publishes a chat message to every connected client.
type MessageNotifier interface {
	NotifyMessage(ctx context.Context, sender, text string)
}

// ChatHandler accepts chat messages over HTTP and fans them out through the
// notification path.
type ChatHandler struct {
	notifier MessageNotifier
	logger   logger.Logger
}

type ChatMessageRequest struct {
	Username string `json:"username" binding:"required"`
	Message  string `json:"message" binding:"required"`
}

func NewChatHandler(notifier MessageNotifier, log logger.Logger) *ChatHandler {
	return &ChatHandler{
		notifier: notifier,
		logger:   log.WithField("handler", "chat"),
	}
}

func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req ChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid request format: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid message format",
		})
		return
	}

	// Best effort: delivery failures are logged by the producer, the HTTP
	// response only confirms the message was accepted.
	h.notifier.NotifyMessage(c.Request.Context(), req.Username, req.Message)

	h.logger.Infof("Chat message sent by %s", req.Username)

	c.JSON(http.StatusOK, gin.H{
		"status": "sent",
	})
}
