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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/walletledger/internal/adapter/http"
	"github.com/iho/walletledger/internal/adapter/http/handler"
	"github.com/iho/walletledger/internal/adapter/http/middleware"
	"github.com/iho/walletledger/internal/adapter/repository/memory"
	postgresRepo "github.com/iho/walletledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/walletledger/internal/adapter/repository/redis"
	"github.com/iho/walletledger/internal/infrastructure/auth"
	"github.com/iho/walletledger/internal/infrastructure/config"
	"github.com/iho/walletledger/internal/infrastructure/eventpublisher"
	"github.com/iho/walletledger/internal/infrastructure/logger"
	"github.com/iho/walletledger/internal/infrastructure/metrics"
	"github.com/iho/walletledger/internal/infrastructure/postgres"
	"github.com/iho/walletledger/internal/infrastructure/redis"
	"github.com/iho/walletledger/internal/usecase"
)

const limiterIdleTTL = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(log.WithContext(ctx), cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	app, err := newApplication(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer app.close()

	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      app.router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	workerCtx, cancelWorkers := context.WithCancel(ctx)
	defer cancelWorkers()
	done := app.startWorkers(workerCtx)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Str("store", cfg.StoreDriver).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	cancelWorkers()
	<-done

	log.Info().Msg("server stopped")
	return nil
}

type worker interface {
	Start(ctx context.Context) error
}

type application struct {
	router  http.Handler
	engine  *usecase.Engine
	workers []worker
	limiter *middleware.RateLimiter
	log     zerolog.Logger
	closers []func()
}

// newApplication wires storage, the engine and the HTTP surface from cfg.
func newApplication(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*application, error) {
	app := &application{log: log}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	var (
		stores   usecase.Stores
		idGen    usecase.IDGenerator
		checkers []handler.Checker
	)

	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		stores = memory.New().Stores()
		idGen = postgresRepo.NewULIDGenerator()
		log.Warn().Msg("using in-memory store; data is lost on restart")
	default:
		if cfg.AutoMigrate {
			if err := postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, log).Up(); err != nil {
				return nil, err
			}
		}

		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, cfg.DatabaseMaxConns, cfg.DatabaseMinConns)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		app.closers = append(app.closers, pool.Close)
		log.Info().Msg("connected to postgres")

		stores = usecase.Stores{
			TxManager:   postgresRepo.NewTxManager(pool),
			Wallets:     postgresRepo.NewWalletRepository(pool),
			Entries:     postgresRepo.NewEntryRepository(pool),
			Holds:       postgresRepo.NewHoldRepository(pool),
			Idempotency: postgresRepo.NewIdempotencyRepository(pool),
			Outbox:      postgresRepo.NewOutboxRepository(pool),
			Audit:       postgresRepo.NewAuditRepository(pool),
		}
		idGen = postgresRepo.NewULIDGenerator()
		checkers = append(checkers, postgres.NewChecker(pool))
	}

	deps := usecase.Dependencies{
		Stores: stores,
		Retrier: postgresRepo.NewRetrierWithConfig(postgresRepo.RetrierConfig{
			MaxRetries:      cfg.OptimisticMaxRetries,
			InitialInterval: postgresRepo.DefaultRetrierConfig().InitialInterval,
			MaxInterval:     postgresRepo.DefaultRetrierConfig().MaxInterval,
			MaxElapsedTime:  postgresRepo.DefaultRetrierConfig().MaxElapsedTime,
		}),
		IDGen:   idGen,
		Metrics: m,
	}

	var lock middleware.IdempotencyLock
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			app.close()
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.closers = append(app.closers, func() { _ = client.Close() })
		checkers = append(checkers, redis.NewChecker(client))

		cache := redisRepo.NewWalletCache(client, stores.Wallets, cfg.WalletCacheTTL)
		deps.Reader = cache
		deps.Cache = cache
		lock = redisRepo.NewIdempotencyLock(client, cfg.IdempotencyLockTTL)
	}

	engine := usecase.NewEngine(deps)
	app.engine = engine

	publisher, closePublisher := newPublisher(cfg, log)
	if closePublisher != nil {
		app.closers = append(app.closers, closePublisher)
	}
	app.workers = append(app.workers,
		eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: stores.Outbox,
			Publisher:  publisher,
			Logger:     log,
			Metrics:    m,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxPollInterval,
			Retention:  cfg.OutboxRetention,
		}),
		eventpublisher.NewIdempotencyJanitor(stores.Idempotency, log, cfg.IdempotencyRetention, time.Hour),
	)

	routerCfg := httpAdapter.RouterConfig{
		WalletHandler:         handler.NewWalletHandler(engine, engine.Wallets()),
		MutationHandler:       handler.NewMutationHandler(engine),
		TransferHandler:       handler.NewTransferHandler(engine),
		EntryHandler:          handler.NewEntryHandler(engine.Entries()),
		HoldHandler:           handler.NewHoldHandler(engine.Holds()),
		ReconciliationHandler: handler.NewReconciliationHandler(engine, engine.Reconciliation()),
		HealthHandler:         handler.NewHealthHandler(checkers...),
		Logger:                log,
		Metrics:               m,
		Gatherer:              reg,
		IdempotencyLock:       lock,
	}
	if cfg.AuthEnabled {
		routerCfg.JWTManager = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiration)
	}
	if cfg.RateLimitRPS > 0 {
		app.limiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
		routerCfg.RateLimiter = app.limiter
	}

	app.router = httpAdapter.NewRouter(routerCfg)
	return app, nil
}

// newPublisher picks Kafka when brokers are configured and the log sink otherwise.
func newPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, func()) {
	if len(cfg.KafkaBrokers) == 0 {
		return eventpublisher.NewLogPublisher(log), nil
	}

	p := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
	log.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing outbox events to kafka")
	return p, func() {
		if err := p.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close kafka writer")
		}
	}
}

// startWorkers runs the background workers and returns a channel closed once all have stopped.
func (a *application) startWorkers(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	finished := make(chan struct{}, len(a.workers)+1)

	for _, w := range a.workers {
		go func(w worker) {
			defer func() { finished <- struct{}{} }()
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				a.log.Error().Err(err).Msg("background worker stopped")
			}
		}(w)
	}

	n := len(a.workers)
	if a.limiter != nil {
		n++
		go func() {
			defer func() { finished <- struct{}{} }()
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if removed := a.limiter.CleanupLimiters(limiterIdleTTL); removed > 0 {
						a.log.Debug().Int("removed", removed).Msg("dropped idle rate limiters")
					}
				}
			}
		}()
	}

	go func() {
		for i := 0; i < n; i++ {
			<-finished
		}
		close(done)
	}()

	return done
}

func (a *application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
