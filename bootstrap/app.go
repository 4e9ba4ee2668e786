package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"content-search/config"
	"content-search/consumer"
	"content-search/driver"
	"content-search/facet"
	"content-search/gateway"
	"content-search/logger"
	"content-search/usecase"
	appOtel "content-search/utils/otel"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// App holds all components of the content-search service.
type App struct {
	httpServer    *http.Server
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	redisConsumer *consumer.Consumer
	otelShutdown  appOtel.ShutdownFunc
}

// Run initializes all components and starts the service.
// It blocks until ctx is cancelled, then performs graceful shutdown.
func Run(ctx context.Context) error {
	// ── OpenTelemetry ──
	otelCfg := appOtel.ConfigFromEnv()
	otelShutdown, err := appOtel.InitProvider(ctx, otelCfg)
	if err != nil {
		fmt.Printf("Failed to initialize OpenTelemetry: %v\n", err)
		otelCfg.Enabled = false
		otelShutdown = func(context.Context) error { return nil }
	}

	// ── Logger ──
	logger.InitWithOTel(otelCfg.Enabled)
	logger.Logger.Info("Starting content-search",
		"service", otelCfg.ServiceName,
		"otel_enabled", otelCfg.Enabled,
	)

	// ── Load config ──
	appCfg, err := config.Load()
	if err != nil {
		logger.Logger.Error("Failed to load config", "err", err)
		return err
	}

	// ── Drivers (infrastructure layer) ──
	dbPool, err := initDatabasePool(ctx, appCfg)
	if err != nil {
		logger.Logger.Error("Failed to initialize database", "err", err)
		return err
	}

	redisClient, err := initRedisClient(ctx, appCfg)
	if err != nil {
		logger.Logger.Error("Failed to initialize Redis", "err", err)
		dbPool.Close()
		return err
	}

	indexDriver, err := initIndexDriver(ctx, appCfg)
	if err != nil {
		logger.Logger.Error("Failed to initialize index backend", "err", err)
		redisClient.Close()
		dbPool.Close()
		return err
	}

	// ── Gateways (anti-corruption layer) ──
	contentRepo := gateway.NewContentGateway(driver.NewDatabaseDriver(dbPool))
	indexClient := gateway.NewIndexGateway(indexDriver)
	syncStore := gateway.NewSyncStateGateway(driver.NewSyncStateDriver(redisClient, appCfg.Redis.SyncStateKey))

	// ── Use cases (application layer) ──
	resolver := facet.NewResolver(contentRepo, logger.Logger)
	searchUsecase := usecase.NewSearchPostsUsecase(indexClient, contentRepo, resolver, logger.Logger)
	reindexUsecase := usecase.NewReindexUsecase(contentRepo, indexClient, syncStore, appCfg.Reindex.PageSize, logger.Logger)
	syncPostUsecase := usecase.NewSyncPostUsecase(contentRepo, indexClient, logger.Logger)

	// ── Redis Streams Consumer ──
	var redisConsumer *consumer.Consumer
	if appCfg.Consumer.Enabled {
		eventHandler := consumer.NewPostEventHandler(syncPostUsecase, logger.Logger)
		redisConsumer, err = consumer.NewConsumer(appCfg.Consumer, eventHandler, logger.Logger)
		if err != nil {
			logger.Logger.Error("Failed to create Redis Streams consumer", "err", err)
		} else {
			if err := redisConsumer.Start(ctx); err != nil {
				logger.Logger.Error("Failed to start Redis Streams consumer", "err", err)
			} else {
				logger.Logger.Info("Redis Streams consumer started",
					"stream", appCfg.Consumer.StreamKey,
					"group", appCfg.Consumer.GroupName,
				)
			}
		}
	} else {
		logger.Logger.Info("Redis Streams consumer disabled")
	}

	// ── Reindex page loop ──
	go runReindexLoop(ctx, reindexUsecase, appCfg.Reindex.Interval)

	// ── Servers ──
	app := &App{
		httpServer:    newHTTPServer(searchUsecase, reindexUsecase, appCfg, otelCfg),
		dbPool:        dbPool,
		redisClient:   redisClient,
		redisConsumer: redisConsumer,
		otelShutdown:  otelShutdown,
	}

	go func() {
		logger.Logger.Info("http listen", "addr", appCfg.HTTP.Addr)
		if err := app.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Error("http", "err", err)
		}
	}()

	// ── Wait for shutdown signal ──
	<-ctx.Done()
	app.shutdown()
	return nil
}

// shutdown performs graceful shutdown of all components.
func (a *App) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("http shutdown error", "err", err)
	}
	if a.redisConsumer != nil {
		a.redisConsumer.Stop()
	}
	if a.redisClient != nil {
		a.redisClient.Close()
	}
	if a.dbPool != nil {
		a.dbPool.Close()
	}

	otelCtx, otelCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer otelCancel()
	if err := a.otelShutdown(otelCtx); err != nil {
		fmt.Printf("Failed to shutdown OpenTelemetry: %v\n", err)
	}
}

// newRetryBackoff creates an exponential backoff policy for reindex loop
// retries.
func newRetryBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Second
	bo.MaxInterval = 5 * time.Minute
	bo.Multiplier = 2
	return bo
}

// runReindexLoop drives the reindex state machine. While a run is active it
// processes page after page; between runs it polls for newly started runs at
// the configured interval. A crashed process resumes the run from its
// checkpoint here.
func runReindexLoop(ctx context.Context, reindexUsecase *usecase.ReindexUsecase, interval time.Duration) {
	defer func() {
		if r := recover(); r != nil {
			logger.Logger.Error("reindex loop panic", "err", r)
		}
	}()

	bo := newRetryBackoff()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		start := time.Now()
		done, err := reindexUsecase.ProcessNextPage(ctx)
		if err != nil {
			appOtel.Metrics.AddError(ctx, "reindex")
			delay := bo.NextBackOff()
			logger.Logger.Error("reindex page error, backing off", "err", err, "retry_in", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return
			}
			continue
		}
		bo.Reset()

		if !done {
			appOtel.Metrics.RecordPage(ctx, time.Since(start))
			continue
		}

		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return
		}
	}
}
