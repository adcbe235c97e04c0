package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/warung-io/backend-warung/internal/catalog"
	"github.com/warung-io/backend-warung/internal/config"
	"github.com/warung-io/backend-warung/internal/lock"
	"github.com/warung-io/backend-warung/internal/obs"
	"github.com/warung-io/backend-warung/internal/repo"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logFormat := envOrDefault("OBS_LOG_FORMAT", "json")
	logLevel := envOrDefault("OBS_LOG_LEVEL", "info")
	logger := obs.NewLogger(logFormat, logLevel).With().Str("component", "worker").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool := mustInitDatabase(ctx, cfg, logger)
	defer pool.Close()

	redisClient := mustInitRedis(ctx, cfg, logger)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close redis")
		}
	}()

	catalogRepo := repo.CatalogRepo{Pool: pool}
	catalogSvc, err := catalog.NewService(catalog.ServiceConfig{
		Store:    catalogRepo,
		Cache:    catalog.NewCache(redisClient, cfg.SnapshotCacheTTL),
		MaxItems: cfg.SnapshotMaxItems,
		Logger:   logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise catalog service")
	}

	redisConn, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url for asynq")
	}

	taskClient := asynq.NewClient(redisConn)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Error().Err(err).Msg("close task client")
		}
	}()

	mux := asynq.NewServeMux()
	locker := &lock.Locker{R: redisClient}
	mux.Handle(catalog.TaskSnapshotRefresh, catalog.RefreshHandler{Svc: catalogSvc, Locker: locker})
	mux.Handle(catalog.TaskSnapshotRefreshAll, catalog.FanoutHandler{Lister: catalogRepo, Client: taskClient})

	srv := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 5,
		Queues: map[string]int{
			"maintenance": 1,
			"default":     1,
		},
	})

	scheduler := asynq.NewScheduler(redisConn, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register(
		cfg.SnapshotRefreshCron,
		asynq.NewTask(catalog.TaskSnapshotRefreshAll, nil),
		asynq.Queue("maintenance"),
	); err != nil {
		logger.Fatal().Err(err).Msg("register snapshot refresh schedule")
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			logger.Error().Err(err).Msg("scheduler stopped with error")
		}
	}()

	logger.Info().Str("schedule", cfg.SnapshotRefreshCron).Msg("worker starting")
	if err := srv.Start(mux); err != nil {
		logger.Fatal().Err(err).Msg("start task server")
	}

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	scheduler.Shutdown()
	srv.Shutdown()
	logger.Info().Msg("worker shutdown complete")
}

func mustInitDatabase(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *pgxpool.Pool {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database config")
	}
	poolConfig.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect database")
	}
	if err := pool.Ping(pingCtx); err != nil {
		logger.Fatal().Err(err).Msg("ping database")
	}
	return pool
}

func mustInitRedis(ctx context.Context, cfg *config.Config, logger zerolog.Logger) *redis.Client {
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		logger.Error().Err(err).Msg("instrument redis tracing")
	}
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal().Err(err).Msg("ping redis")
	}
	return redisClient
}

func envOrDefault(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		trimmed := strings.TrimSpace(val)
		if trimmed != "" {
			return trimmed
		}
	}
	return fallback
}
