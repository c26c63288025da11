package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-user-notify/internal/infrastructure/auth"
)

func newTestRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestJWTAuth_AllowsValidToken(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour, "user-notify")
	router := newTestRouter(JWTAuth(manager))

	token, err := manager.Generate("42", "alice@example.com")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestJWTAuth_RejectsMissingHeader(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour, "user-notify")
	router := newTestRouter(JWTAuth(manager))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestJWTAuth_RejectsBadToken(t *testing.T) {
	manager := auth.NewJWTManager("test-secret", time.Hour, "user-notify")
	router := newTestRouter(JWTAuth(manager))

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRateLimit_EnforcesBurst(t *testing.T) {
	router := newTestRouter(RateLimit(60, 2))

	status := func() int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusOK, status())
	assert.Equal(t, http.StatusTooManyRequests, status())
}

func TestRateLimit_IsolatesClients(t *testing.T) {
	router := newTestRouter(RateLimit(60, 1))

	status := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	assert.Equal(t, http.StatusOK, status("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, status("10.0.0.1:1234"))
	assert.Equal(t, http.StatusOK, status("10.0.0.2:1234"))
}

func TestRateLimit_DisabledWhenZero(t *testing.T) {
	router := newTestRouter(RateLimit(0, 0))

	for i := 0; i < 10; i++ {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
}
