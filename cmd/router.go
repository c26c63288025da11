package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"go-user-notify/internal/applicatoin/facade"
	"go-user-notify/internal/infrastructure/auth"
	"go-user-notify/internal/infrastructure/bus"
	"go-user-notify/internal/infrastructure/config"
	"go-user-notify/internal/infrastructure/hub"
	"go-user-notify/internal/infrastructure/logger"
	"go-user-notify/internal/interfaces/middleware"
	"go-user-notify/internal/interfaces/rest/v1/handler"
	"go-user-notify/internal/interfaces/sse"
	"go-user-notify/internal/interfaces/websocket"
	"go-user-notify/internal/notification"
)

type routerDeps struct {
	cfg      *config.Config
	log      logger.Logger
	registry *hub.Registry
	bridge   *bus.Bridge
	producer *notification.Producer
	users    *facade.UserService
	cache    *facade.CacheService
	jwt      *auth.JWTManager
	pool     *pgxpool.Pool
	redis    *redis.Client
}

func InitRouter(deps routerDeps) http.Handler {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	rootGroup := router.Group("")
	rootGroup.Use(middleware.RateLimit(deps.cfg.RateLimit.PerMinute, deps.cfg.RateLimit.Burst))

	// Health check endpoint
	rootGroup.GET("/health", func(c *gin.Context) {
		ctx := c.Request.Context()

		redisStatus := "connected"
		if err := deps.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "disconnected"
		}

		dbStatus := "connected"
		if err := deps.pool.Ping(ctx); err != nil {
			dbStatus = "disconnected"
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"redis":     redisStatus,
			"database":  dbStatus,
		})
	})

	// Hub status endpoint
	rootGroup.GET("/hub/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":        "healthy",
			"bus_connected": deps.bridge.Connected(),
			"malformed":     deps.bridge.MalformedCount(),
			"connections":   deps.registry.Count(),
		})
	})

	userHandler := handler.NewUserHandler(deps.users, deps.log)
	authHandler := handler.NewAuthHandler(deps.users, deps.jwt, deps.log)
	cacheHandler := handler.NewCacheHandler(deps.cache, deps.log)
	chatHandler := handler.NewChatHandler(deps.producer, deps.log)

	authRequired := middleware.JWTAuth(deps.jwt)

	apiGroup := rootGroup.Group("/api")
	{
		apiGroup.POST("/auth/register", authHandler.Register)
		apiGroup.POST("/auth/login", authHandler.Login)

		apiGroup.GET("/v1/users", userHandler.List)
		apiGroup.GET("/v1/users/:id", userHandler.Get)
		apiGroup.POST("/v1/users", userHandler.Create)
		apiGroup.DELETE("/v1/users/:id", authRequired, userHandler.Delete)

		apiGroup.POST("/messages", chatHandler.SendMessage)
	}

	cacheGroup := rootGroup.Group("/cache")
	{
		cacheGroup.GET("/:key", cacheHandler.Get)
		cacheGroup.POST("/:key", cacheHandler.Set)
		cacheGroup.DELETE("/:key", cacheHandler.Delete)
	}

	// Test page and assets
	router.Static("/static", deps.cfg.Server.StaticDir)

	sse.InitSSERouter(deps.log, deps.registry, rootGroup)
	websocket.InitWebSocketRouter(deps.log, deps.registry, rootGroup)

	return router
}
