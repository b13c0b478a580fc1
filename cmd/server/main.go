package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tesloshop/shop-auth/internal/api"
	"github.com/tesloshop/shop-auth/internal/api/ws"
	"github.com/tesloshop/shop-auth/internal/core/realtime"
	"github.com/tesloshop/shop-auth/internal/core/service"
	mongodb "github.com/tesloshop/shop-auth/internal/infrastructure/db/mongo"
	redisdb "github.com/tesloshop/shop-auth/internal/infrastructure/db/redis"
	"github.com/tesloshop/shop-auth/internal/infrastructure/http/handlers"
	"github.com/tesloshop/shop-auth/internal/infrastructure/queue"
	"github.com/tesloshop/shop-auth/internal/pkg/config"
	"github.com/tesloshop/shop-auth/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.MustLoad()
	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	// --- Storage ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:         cfg.Mongo.URI,
		Database:    cfg.Mongo.Database,
		MaxPoolSize: cfg.Mongo.MaxPoolSize,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to mongodb")
	}
	identities := mongodb.NewIdentityRepository(db)
	if err := identities.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create identity indexes")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// --- Services ---
	tokens, err := service.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid token configuration")
	}
	throttle := redisdb.NewLoginThrottle(rdb, cfg.Login.MaxAttempts, cfg.Login.Lockout)
	authService := service.NewAuthService(identities, tokens, throttle, logger.Component("auth"))
	validator := service.NewTokenValidator(identities, tokens)

	// --- Real-time gateway ---
	dispatcher := queue.NewDispatcher(cfg.Gateway.Workers, logger.Component("dispatcher"))
	dispatcher.Start(ctx)
	gateway := realtime.NewGateway(validator, realtime.NewRegistry(), dispatcher, logger.Component("gateway"))

	e := api.NewRouter(api.Dependencies{
		Log:       logger.Component("http"),
		Auth:      authService,
		Validator: validator,
		WS:        ws.NewHandler(gateway, dispatcher, logger.Component("ws")),
		Probes: []handlers.Dependency{
			handlers.MongoDependency(db),
			handlers.RedisDependency(rdb),
		},
	})

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := mongoClient.Disconnect(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("mongodb disconnect")
	}
	if err := rdb.Close(); err != nil {
		log.Error().Err(err).Msg("redis close")
	}
	log.Info().Msg("server stopped")
}
