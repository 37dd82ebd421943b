package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resale_support_backend/internal/ai"
	"resale_support_backend/internal/events"
	"resale_support_backend/internal/generation"
	apphttp "resale_support_backend/internal/http"
	"resale_support_backend/internal/http/router"
	"resale_support_backend/internal/intake"
	"resale_support_backend/internal/intake/ports"
	"resale_support_backend/internal/ledger"
	"resale_support_backend/internal/line"
	"resale_support_backend/internal/reports"
	"resale_support_backend/internal/storage"
	"resale_support_backend/platform/config"
	"resale_support_backend/platform/db"
	"resale_support_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// sessionCleanupInterval bounds how long an abandoned session can occupy
// memory past its timeout.
const sessionCleanupInterval = 10 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, "migrations")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	// Event bus for decoupled communication between modules
	eventBus := events.NewInMemoryBus(log)

	// LINE Messaging API client: serves both the messenger and image ports
	lineClient := line.NewClient(cfg, log)

	aiClient, err := ai.NewClient(ctx, cfg, log)
	if err != nil {
		log.Error("failed to initialize ai client", "error", err)
		panic("failed to initialize ai client: " + err.Error())
	}

	ledgerRepo := ledger.New(pool)
	generator := generation.New(aiClient, cfg, log)
	covers := initCoverStore(ctx, cfg, log)

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	intakeModule := intake.NewModule(cfg, lineClient, lineClient, aiClient, generator, ledgerRepo, covers, eventBus, log)
	intakeModule.StartSessionCleanup(ctx, sessionCleanupInterval)

	reportBuilder := reports.NewBuilder(ledgerRepo)
	reportService := reports.NewService(reportBuilder, lineClient, cfg.GetLineAdminUserID(), eventBus, log)
	reportsModule := reports.NewModule(reportService, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			intakeModule,
			reportsModule,
		},
	}

	engine := router.New(app)

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- engine.Run(cfg.HTTPAddr)
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
	case err := <-srvErr:
		if err != nil {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// initCoverStore wires MinIO cover hosting when configured. The system runs
// without it; covers simply stay local and the ledger rows have no image
// URL.
func initCoverStore(ctx context.Context, cfg *config.Config, log *logger.Logger) ports.CoverStore {
	if !cfg.IsMinIOEnabled() {
		log.Warn("MINIO_ENDPOINT not configured; cover image hosting disabled")
		return nil
	}

	store, err := storage.NewCoverStore(cfg, log)
	if err != nil {
		log.Error("failed to initialize cover store", "error", err)
		panic("failed to initialize cover store: " + err.Error())
	}

	if err := withRetry(ctx, log, "ensure cover bucket", 5, 2*time.Second, func() error {
		return store.EnsureBucketExists(ctx)
	}); err != nil {
		log.Error("failed to ensure cover bucket exists", "error", err)
		panic("failed to ensure cover bucket exists: " + err.Error())
	}

	log.Info("cover store initialized", "bucket", cfg.GetMinioBucketProductImages())
	return store
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
