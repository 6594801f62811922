package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/config"
	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/router"
	"github.com/appdotbuilder/bidan-hebat-management/internal/worker"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	setupLogger(cfg)

	db, err := infra.NewDatabase(infra.DatabaseConfig{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		LogLevel:     cfg.DBLogLevel,
		MaxOpenConns: cfg.DBMaxOpenConns,
		MaxIdleConns: cfg.DBMaxIdleConns,
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("failed to connect to database")
	}
	defer func() {
		if err := infra.CloseDatabase(db); err != nil {
			log.Warn().Err(err).Msg("closing database")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Redis backs the dashboard cache and the low-stock job queue. Both are
	// optional: without Redis the service runs with an empty cache and drops
	// notification jobs.
	var (
		rdb   *redis.Client
		cache *infra.Cache
		pool  *worker.Pool
	)
	if cfg.RedisEnabled {
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		rdb, err = infra.NewRedis(pingCtx, cfg.RedisURL)
		pingCancel()
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, continuing without cache and notifications")
			rdb = nil
		}
	}
	if rdb != nil {
		defer rdb.Close()
		cache = infra.NewCache(rdb, cfg.CacheTTL(), infra.NewCircuitBreaker(infra.DefaultBreakerConfig()))

		// Worker handlers are wired here (composition root) so that the pool
		// has access to the infrastructure it needs.
		alerts := worker.NewStockAlertWorker(worker.NewAlertFeed(rdb))
		pool = worker.NewPool(rdb, worker.QueueStockAlert)
		pool.Register(worker.JobLowStock, alerts.Process)
		pool.Start(ctx, cfg.WorkerPoolSize)
	}

	r := router.New(ctx, cfg, db, rdb, cache)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("env", cfg.Env).Str("db", cfg.DBDriver).Msgf("Bidan Hebat backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	cancel()
	if pool != nil {
		pool.Wait()
	}
	log.Info().Msg("server exited")
}

// setupLogger: dev gets the pretty console writer, production plain JSON.
func setupLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.IsProduction() {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
		return
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}
