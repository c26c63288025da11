package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"go-user-notify/internal/applicatoin/facade"
	"go-user-notify/internal/domain/model"
	"go-user-notify/internal/infrastructure/auth"
	"go-user-notify/internal/infrastructure/logger"
	"go-user-notify/internal/infrastructure/persistence"
)

// AuthHandler serves registration and login.
type AuthHandler struct {
	users  *facade.UserService
	jwt    *auth.JWTManager
	logger logger.Logger
}

func NewAuthHandler(users *facade.UserService, jwt *auth.JWTManager, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:  users,
		jwt:    jwt,
		logger: log.WithField("handler", "auth"),
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if errors.Is(err, persistence.ErrEmailConflict) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already registered"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to register user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.users.Authenticate(c.Request.Context(), req)
	if errors.Is(err, facade.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err != nil {
		h.logger.Errorf("Failed to authenticate %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to authenticate"})
		return
	}

	token, err := h.jwt.Generate(strconv.FormatInt(int64(user.ID), 10), user.Email)
	if err != nil {
		h.logger.Errorf("Failed to issue token for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"user":         user,
	})
}
