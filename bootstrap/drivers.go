package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"content-search/config"
	"content-search/driver"
	"content-search/logger"
)

// initDatabasePool connects to the content database with retry logic.
func initDatabasePool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	logger.Logger.Info("Connecting to database", "host", cfg.Database.Host)

	var pool *pgxpool.Pool
	var err error
	for i := range maxRetries {
		pool, err = pgxpool.New(ctx, cfg.Database.GetDatabaseURL())
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, cfg.Database.Timeout)
			err = pool.Ping(pingCtx)
			cancel()
			if err == nil {
				logger.Logger.Info("Connected to database successfully")
				return pool, nil
			}
			pool.Close()
		}

		logger.Logger.Warn("database not ready, retrying", "attempt", i+1, "max", maxRetries, "err", err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", maxRetries, err)
}

// initRedisClient connects to Redis with retry logic.
func initRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	logger.Logger.Info("Connecting to Redis", "addr", cfg.Redis.Addr)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	var err error
	for i := range maxRetries {
		if err = client.Ping(ctx).Err(); err == nil {
			logger.Logger.Info("Connected to Redis successfully")
			return client, nil
		}
		logger.Logger.Warn("Redis not ready, retrying", "attempt", i+1, "max", maxRetries, "err", err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	client.Close()
	return nil, fmt.Errorf("failed to connect to Redis after %d attempts: %w", maxRetries, err)
}

// initIndexDriver connects to the full-text index backend with retry logic.
func initIndexDriver(ctx context.Context, cfg *config.Config) (*driver.IndexDriver, error) {
	const maxRetries = 5
	const retryDelay = 5 * time.Second

	logger.Logger.Info("Connecting to index backend", "url", cfg.Index.URL, "index", cfg.Index.Name)

	d := driver.NewIndexDriver(cfg.Index.URL, cfg.Index.Name, cfg.Index.Timeout, cfg.Index.MaxTries, logger.Logger)

	var err error
	for i := range maxRetries {
		if err = d.Ping(ctx); err == nil {
			logger.Logger.Info("Connected to index backend successfully")
			return d, nil
		}
		logger.Logger.Warn("index backend not ready, retrying", "attempt", i+1, "max", maxRetries, "err", err)
		if i < maxRetries-1 {
			time.Sleep(retryDelay)
		}
	}
	return nil, fmt.Errorf("failed to connect to index backend after %d attempts: %w", maxRetries, err)
}
