package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-user-notify/internal/applicatoin/facade"
	"go-user-notify/internal/domain/model"
	"go-user-notify/internal/infrastructure/logger"
	"go-user-notify/internal/infrastructure/persistence"
)

// CacheHandler serves the generic key-value cache endpoints.
type CacheHandler struct {
	cache  *facade.CacheService
	logger logger.Logger
}

func NewCacheHandler(cache *facade.CacheService, log logger.Logger) *CacheHandler {
	return &CacheHandler{
		cache:  cache,
		logger: log.WithField("handler", "cache"),
	}
}

func (h *CacheHandler) Get(c *gin.Context) {
	key := c.Param("key")

	value, err := h.cache.Get(c.Request.Context(), key)
	if errors.Is(err, persistence.ErrCacheKeyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to get cache key %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get value"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"key": key, "value": value})
}

func (h *CacheHandler) Set(c *gin.Context) {
	key := c.Param("key")

	var req model.CacheValue
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.cache.Set(c.Request.Context(), key, req); err != nil {
		h.logger.Errorf("Failed to set cache key %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to set value"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Value cached successfully",
		"key":     key,
	})
}

func (h *CacheHandler) Delete(c *gin.Context) {
	key := c.Param("key")

	err := h.cache.Delete(c.Request.Context(), key)
	if errors.Is(err, persistence.ErrCacheKeyNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Key not found"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to delete cache key %s: %v", key, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete value"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Cache entry deleted successfully",
		"key":     key,
	})
}
