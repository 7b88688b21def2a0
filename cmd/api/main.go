package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshcart/storefront/internal/config"
	"github.com/freshcart/storefront/internal/events"
	"github.com/freshcart/storefront/internal/infra"
	"github.com/freshcart/storefront/internal/logging"
	"github.com/freshcart/storefront/internal/routes"
	"github.com/freshcart/storefront/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	deps := routes.Deps{Cfg: cfg, Logger: logger}

	switch cfg.UserStore {
	case config.UserStorePostgres:
		if err := infra.RunMigrations(cfg.DatabaseURL, logger); err != nil {
			logger.Error("run migrations", "error", err)
			os.Exit(1)
		}
		var db *pgxpool.Pool
		db, err = infra.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("connect postgres", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		deps.DB = db
	case config.UserStoreMongo:
		var mdb *mongo.Database
		mdb, err = infra.NewMongoDatabase(ctx, cfg.MongoURL, cfg.MongoDatabase)
		if err != nil {
			logger.Error("connect mongo", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := mdb.Client().Disconnect(context.Background()); err != nil {
				logger.Warn("close mongo", "error", err)
			}
		}()
		deps.Mongo = mdb
	}

	if cfg.RedisURL != "" {
		var cache *redis.Client
		cache, err = infra.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("connect redis", "error", err)
			os.Exit(1)
		}
		defer func() {
			if err := cache.Close(); err != nil {
				logger.Warn("close redis", "error", err)
			}
		}()
		deps.Cache = cache
	}

	if cfg.RabbitMQURL != "" {
		conn, err := infra.NewRabbitConnection(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("connect rabbitmq", "error", err)
			os.Exit(1)
		}
		defer conn.Close()
		publisher, err := events.NewRabbitPublisher(conn)
		if err != nil {
			logger.Error("create publisher", "error", err)
			os.Exit(1)
		}
		defer publisher.Close()
		deps.Publisher = publisher
	}

	srv, err := server.New(deps)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	srvErrCh := make(chan error, 1)
	go func() {
		srvErrCh <- srv.Listen()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-srvErrCh:
		if err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownPeriod)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	logger.Info("server exited cleanly")
}
