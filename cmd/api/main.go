package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/srgjo27/community_ticket/internal/adapter/cache"
	"github.com/srgjo27/community_ticket/internal/adapter/handler"
	"github.com/srgjo27/community_ticket/internal/adapter/messaging/rabbitmq"
	"github.com/srgjo27/community_ticket/internal/adapter/repository/postgres"
	"github.com/srgjo27/community_ticket/internal/core/services"
	"github.com/srgjo27/community_ticket/internal/platform/config"
	"github.com/srgjo27/community_ticket/internal/platform/database"
	"github.com/srgjo27/community_ticket/internal/platform/logging"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}

	logger := logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgresDB(ctx, cfg.DB, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := postgres.Migrate(ctx, db); err != nil {
		return err
	}

	logger.Info("connecting to redis", "addr", cfg.RedisAddr())
	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
		DB:   0,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return err
	}
	logger.Info("redis connected")

	publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return err
	}
	defer publisher.Close()
	logger.Info("rabbitmq connected", "exchange", cfg.AMQPExchange)

	eventRepo := postgres.NewEventRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	eventService := services.NewEventService(
		eventRepo,
		cache.NewLocker(redisClient),
		cache.NewAvailabilityCache(redisClient, cfg.AvailabilityTTL),
		logger,
		services.Options{LockTTL: cfg.LockTTL, CleanupBatchSize: cfg.CleanupBatchSize},
	)
	relay := services.NewOutboxRelay(outboxRepo, publisher, logger)

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler.NewEventHandler(eventService, logger).Routes(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		eventService.RunBackgroundCleanup(gctx, cfg.CleanupInterval)
		return nil
	})

	g.Go(func() error {
		relay.Run(gctx, cfg.OutboxInterval)
		return nil
	})

	g.Go(func() error {
		logger.Info("server starting", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server exiting")
	return nil
}
