package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/northgate-labs/user-service/internal/api/http"
	"github.com/northgate-labs/user-service/internal/api/http/handlers"
	"github.com/northgate-labs/user-service/internal/auth"
	"github.com/northgate-labs/user-service/internal/cache"
	"github.com/northgate-labs/user-service/internal/config"
	"github.com/northgate-labs/user-service/internal/events"
	"github.com/northgate-labs/user-service/internal/graph"
	"github.com/northgate-labs/user-service/internal/observability"
	"github.com/northgate-labs/user-service/internal/persistence"
	"github.com/northgate-labs/user-service/internal/repository"
	"github.com/northgate-labs/user-service/internal/service"
	"github.com/northgate-labs/user-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	userRepo := repository.NewUserRepository(pg.PoolHandle())
	profiles := cache.NewProfileCache(redis, cfg.GraphQL.ProfileCacheTTL(), logger)

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartAuditWorker(dispatcher, logger)

	authService := service.NewAuthService(*cfg, userRepo, dispatcher)
	userService := service.NewUserService(*cfg, userRepo, profiles, dispatcher)
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager())

	// The guard configuration is built once here and handed to the schema
	// builder; nothing mutates it afterwards.
	guards := graph.DefaultGuards()
	schema, err := graph.BuildSchema([]graph.EntityDescriptor{graph.UserEntity(userService)}, guards)
	if err != nil {
		logger.Fatal("failed to build graphql schema", zap.Error(err))
	}

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:            handlers.NewAuthHandler(authService),
		Users:           handlers.NewUsersHandler(userService),
		GraphQL:         graph.NewHandler(schema, logger),
		GraphQLEndpoint: cfg.GraphQL.Endpoint,
		AuthMiddleware:  authMiddleware,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
