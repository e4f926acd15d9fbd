package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/qatledger/internal/adapter/assistant"
	httpAdapter "github.com/iho/qatledger/internal/adapter/http"
	"github.com/iho/qatledger/internal/adapter/http/handler"
	"github.com/iho/qatledger/internal/adapter/http/middleware"
	"github.com/iho/qatledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/qatledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/qatledger/internal/adapter/repository/redis"
	"github.com/iho/qatledger/internal/adapter/repository/sqlite"
	"github.com/iho/qatledger/internal/infrastructure/config"
	"github.com/iho/qatledger/internal/infrastructure/eventpublisher"
	"github.com/iho/qatledger/internal/infrastructure/idgen"
	"github.com/iho/qatledger/internal/infrastructure/metrics"
	"github.com/iho/qatledger/internal/infrastructure/postgres"
	"github.com/iho/qatledger/internal/infrastructure/redis"
	"github.com/iho/qatledger/internal/usecase"
)

// storage is one opened ledger backend.
type storage struct {
	txManager usecase.TxManager
	repos     usecase.Repositories
	retrier   usecase.Retrier
	ping      handler.Pinger
	close     func()
}

func openStorage(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*storage, error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		store := memory.NewStore()
		return &storage{
			txManager: store,
			repos:     store.Repositories(),
			close:     func() {},
		}, nil

	case config.BackendSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return &storage{
			txManager: db.TxManager(),
			repos:     db.Repositories(),
			ping:      db,
			close:     func() { _ = db.Close() },
		}, nil

	case config.BackendPostgres:
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
			return nil, err
		}
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:     cfg.DatabaseURL,
			MaxConns:        cfg.DatabaseMaxConns,
			MinConns:        cfg.DatabaseMinConns,
			MaxConnLifetime: cfg.DatabaseConnLife,
		})
		if err != nil {
			return nil, err
		}
		return &storage{
			txManager: postgresRepo.NewTxManager(pool),
			repos:     postgresRepo.NewRepositories(pool),
			retrier:   postgresRepo.NewRetrier(logger),
			ping:      pool,
			close:     pool.Close,
		}, nil
	}

	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

// app is the fully wired server.
type app struct {
	handler http.Handler
	limiter *middleware.RateLimiter
	closers []func()
}

// Close releases storage and Redis connections in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// buildApp wires storage, use cases and the HTTP router. Metrics are
// registered with reg and served from gatherer.
func buildApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg prometheus.Registerer, gatherer prometheus.Gatherer) (*app, error) {
	a := &app{}

	store, err := openStorage(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s storage: %w", cfg.StorageBackend, err)
	}
	a.closers = append(a.closers, store.close)
	logger.Info().Str("backend", cfg.StorageBackend).Msg("storage opened")

	m := metrics.New(reg)
	health := handler.NewHealthHandler().AddCheck(cfg.StorageBackend, store.ping)

	var (
		cache            usecase.Cache
		idempotencyStore usecase.IdempotencyStore
	)
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		a.closers = append(a.closers, func() { _ = client.Close() })
		logger.Info().Msg("connected to redis")

		cache = m.InstrumentCache(redisRepo.NewCache(client))
		idempotencyStore = redisRepo.NewIdempotencyStore(client)
		health.AddCheck("redis", handler.PingFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}))
	}

	repos := store.repos
	balanceUC := usecase.NewBalanceUseCase(repos, cache, cfg.BalanceCacheTTL, logger)

	broker := eventpublisher.NewBroker(logger)
	broker.SubscribeFunc("balance-cache", balanceUC.Invalidate)
	broker.SubscribeFunc("metrics", m.Observe)
	broker.Subscribe("log", eventpublisher.NewLogPublisher(logger))

	deps := usecase.Deps{
		TxManager: store.txManager,
		IDGen:     idgen.NewULIDGenerator(),
		Retrier:   store.retrier,
		Publisher: broker,
		Logger:    logger,
	}

	ledgerUC := usecase.NewLedgerUseCase(repos, deps)
	partyUC := usecase.NewPartyUseCase(repos, deps)
	inventoryUC := usecase.NewInventoryUseCase(repos, deps)
	expenseUC := usecase.NewExpenseUseCase(repos, deps)
	reportUC := usecase.NewReportUseCase(repos, cfg.ExchangeRates())

	var model usecase.Assistant
	if cfg.OpenAIAPIKey != "" {
		openAI, err := assistant.NewOpenAI(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to create assistant: %w", err)
		}
		model = m.InstrumentAssistant(openAI)
		logger.Info().Str("model", cfg.OpenAIModel).Msg("assistant enabled")
	}
	assistantUC := usecase.NewAssistantUseCase(model, repos, balanceUC, ledgerUC)

	a.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		PartyHandler:     handler.NewPartyHandler(partyUC),
		InventoryHandler: handler.NewInventoryHandler(inventoryUC),
		LedgerHandler:    handler.NewLedgerHandler(ledgerUC, reportUC),
		ExpenseHandler:   handler.NewExpenseHandler(expenseUC),
		ReportHandler:    handler.NewReportHandler(balanceUC, reportUC),
		AssistantHandler: handler.NewAssistantHandler(assistantUC),
		HealthHandler:    health,
		Logger:           logger,
		IdempotencyStore: idempotencyStore,
		IdempotencyTTL:   cfg.IdempotencyTTL,
		RateLimiter:      a.limiter,
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		MetricsHandler:   promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	})

	return a, nil
}

// sweepLimiters resets the per-IP limiters every interval until ctx is done.
func sweepLimiters(ctx context.Context, limiter *middleware.RateLimiter, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.CleanupLimiters()
		}
	}
}
