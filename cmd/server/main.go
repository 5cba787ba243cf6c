package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kevin07696/payout-validation/internal/adapters/memory"
	"github.com/kevin07696/payout-validation/internal/adapters/postgres"
	"github.com/kevin07696/payout-validation/internal/adapters/secrets"
	"github.com/kevin07696/payout-validation/internal/config"
	"github.com/kevin07696/payout-validation/internal/domain/ports"
	validationHandler "github.com/kevin07696/payout-validation/internal/handlers/validation"
	validationService "github.com/kevin07696/payout-validation/internal/services/validation"
	"github.com/kevin07696/payout-validation/pkg/logging"
	"github.com/kevin07696/payout-validation/pkg/middleware"
	"github.com/kevin07696/payout-validation/pkg/observability"
	"github.com/kevin07696/payout-validation/pkg/resilience"
	"github.com/kevin07696/payout-validation/pkg/shutdown"
)

const version = "0.1.0"

// memoryReportLimit bounds the in-process archive used without Postgres
const memoryReportLimit = 10000

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "payout-validation: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logger.Level, cfg.Logger.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting payout validation service", ports.String("version", version))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := secrets.Open(ctx, cfg.Secrets, logger)
	if err != nil {
		return fmt.Errorf("open secret store: %w", err)
	}
	if err := cfg.Database.ResolvePassword(ctx, store); err != nil {
		return err
	}

	policy, err := config.LoadPolicy(cfg.Policy.Path)
	if err != nil {
		return fmt.Errorf("load policy: %w", err)
	}

	svc, err := validationService.NewService(policy, logger)
	if err != nil {
		return err
	}
	active := svc.Policy()
	logger.Info("validation policy loaded",
		ports.String("path", cfg.Policy.Path),
		ports.String("tolerance", active.Tolerance.String()),
		ports.String("global_minimum", active.GlobalMinimum.String()),
		ports.String("global_maximum", active.GlobalMaximum.String()),
		ports.Int("max_batch_size", active.MaxBatchSize))

	manager := shutdown.NewManager(logger, cfg.Server.ShutdownTimeout)
	timeouts := resilience.DefaultTimeoutConfig()
	tracker := shutdown.NewInFlightTracker("validations", logger)

	handlerOpts := []validationHandler.Option{
		validationHandler.WithTimeouts(timeouts),
		validationHandler.WithInFlightTracker(tracker),
	}

	var health *observability.HealthChecker
	if cfg.Database.Enabled() {
		pool, err := initDatabase(ctx, cfg, logger)
		if err != nil {
			return err
		}
		manager.RegisterCloser("postgres", pool)

		health = observability.NewHealthChecker(pool)
		handlerOpts = append(handlerOpts,
			validationHandler.WithPayeeDirectory(postgres.NewPayeeDirectory(pool, timeouts.PayeeLookup)),
			validationHandler.WithReportRepository(postgres.NewReportRepository(pool)))
	} else {
		logger.Warn("DB_HOST not set, running without payee directory; reports are kept in memory")
		health = observability.NewHealthChecker(nil)
		handlerOpts = append(handlerOpts, validationHandler.WithReportRepository(memory.NewReportRepository().WithLimit(memoryReportLimit)))
	}
	health.WithDrainState(tracker.IsDraining)

	metricsServer := observability.StartMetricsServer(strconv.Itoa(cfg.Server.MetricsPort), health, logger)
	manager.Register("metrics-server", metricsServer.Shutdown)

	rateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst, logger)
	manager.Register("rate-limiter", func(context.Context) error {
		rateLimiter.Shutdown()
		return nil
	})

	handler := validationHandler.NewHandler(svc, logger, handlerOpts...)
	router := validationHandler.NewRouter(handler, validationHandler.RouterConfig{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimiter:    rateLimiter,
		Health:         health,
		Development:    cfg.Logger.Development,
	})

	apiServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      timeouts.HTTPHandler + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	manager.Register("validations", tracker.Shutdown)
	manager.Register("api-server", apiServer.Shutdown)

	go func() {
		logger.Info("API server listening", ports.String("addr", apiServer.Addr))
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("API server failed", ports.Err(err))
		}
	}()

	if err := manager.WaitForSignal(); err != nil {
		logger.Error("shutdown completed with errors", ports.Err(err))
		return err
	}
	logger.Info("Server exited")
	return nil
}

// initDatabase opens the pool and applies the schema
func initDatabase(ctx context.Context, cfg *config.Config, logger ports.Logger) (*pgxpool.Pool, error) {
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.ConnectionString())
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := postgres.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return pool, nil
}
