package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"go-user-notify/internal/applicatoin/facade"
	"go-user-notify/internal/infrastructure/auth"
	"go-user-notify/internal/infrastructure/bus"
	"go-user-notify/internal/infrastructure/config"
	"go-user-notify/internal/infrastructure/hub"
	"go-user-notify/internal/infrastructure/logger"
	"go-user-notify/internal/infrastructure/persistence"
	"go-user-notify/internal/infrastructure/server"
	"go-user-notify/internal/notification"
)

func main() {
	ctx := context.Background()
	sctx := WithSignal(ctx)

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	lCfg := logger.NewDefaultConfig()
	lCfg.Level = logger.ParseLevel(cfg.Log.Level)
	lCfg.Format = cfg.Log.Format
	lCfg.Output = cfg.Log.Output
	lCfg.FilePath = cfg.Log.FilePath
	log := logger.NewLogrusLogger(lCfg)

	// Redis serves both the shared pub/sub channel and the cache.
	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		log.Fatalf("invalid redis url: %v", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(sctx).Err(); err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}

	if err := persistence.MigrateUp(cfg.Database.URL, ""); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}
	pool, err := persistence.NewPgxPool(sctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer pool.Close()

	registry := hub.NewRegistry(log)
	broadcaster := hub.NewBroadcaster(registry, log)

	transport := bus.NewRedisTransport(redisClient)
	bridge := bus.NewBridge(transport, broadcaster, log)

	// The first subscription must succeed; afterwards the bridge
	// reconnects on its own.
	if err := bridge.Start(sctx); err != nil {
		log.Fatalf("failed to start bus bridge: %v", err)
	}

	userRepo := persistence.NewUserRepository(pool)
	eventRepo := persistence.NewEventRepository(pool)
	cacheRepo := persistence.NewCacheRepository(redisClient)

	producer := notification.NewProducer(bridge, eventRepo, log)
	userService := facade.NewUserService(userRepo, producer, log)
	cacheService := facade.NewCacheService(cacheRepo)

	jwtManager := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry, cfg.Auth.JWTIssuer)

	router := InitRouter(routerDeps{
		cfg:      cfg,
		log:      log,
		registry: registry,
		bridge:   bridge,
		producer: producer,
		users:    userService,
		cache:    cacheService,
		jwt:      jwtManager,
		pool:     pool,
		redis:    redisClient,
	})

	httpSrv := server.NewHTTPServer(cfg.Server, router)
	app := newApplication(log, httpSrv, registry)

	log.Infof("Server listening on %s", cfg.Server.Addr())
	if err := app.Run(sctx); err != nil {
		log.Errorf("failed to run application: %v", err)
	}
}

type Application struct {
	logger   logger.Logger
	httpSrv  server.Server
	registry *hub.Registry
}

func newApplication(
	log logger.Logger,
	httpSrv *server.HTTPServer,
	registry *hub.Registry,
) *Application {
	return &Application{
		logger:   log.WithField("app", "user-notify"),
		httpSrv:  httpSrv,
		registry: registry,
	}
}

func (app *Application) Run(ctx context.Context) error {
	eg := errgroup.Group{}

	eg.Go(func() error {
		return app.httpSrv.Start(ctx)
	})

	eg.Go(func() error {
		<-ctx.Done()

		gracefulshutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(5*time.Second),
		)
		defer cancel()

		// Drain client connections first, then stop accepting requests.
		app.registry.Close()

		return app.httpSrv.Stop(gracefulshutdownCtx)
	})

	err := eg.Wait()
	if err != nil {
		return err
	}

	return nil
}

func WithSignal(pctx context.Context) context.Context {
	ctx, cancel := context.WithCancel(pctx)

	go func() {
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

		<-sigc

		cancel()
	}()

	return ctx
}
