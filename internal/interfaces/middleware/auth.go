package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"go-user-notify/internal/infrastructure/auth"
)

// ClaimsKey is the gin context key carrying the validated token claims.
const ClaimsKey = "auth_claims"

// JWTAuth rejects requests without a valid bearer token. The WebSocket
// upgrade endpoint is deliberately left outside this gate.
func JWTAuth(manager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := auth.TokenFromHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Missing or malformed authorization header",
			})
			return
		}

		claims, err := manager.Validate(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}
