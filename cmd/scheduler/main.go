package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resale_support_backend/internal/events"
	"resale_support_backend/internal/ledger"
	"resale_support_backend/internal/line"
	"resale_support_backend/internal/reports"
	"resale_support_backend/internal/scheduler"
	"resale_support_backend/platform/config"
	"resale_support_backend/platform/db"
	"resale_support_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	eventBus := events.NewInMemoryBus(log)
	lineClient := line.NewClient(cfg, log)
	ledgerRepo := ledger.New(pool)

	reportBuilder := reports.NewBuilder(ledgerRepo)
	reportService := reports.NewService(reportBuilder, lineClient, cfg.GetLineAdminUserID(), eventBus, log)

	sched, err := scheduler.NewScheduler(cfg, log)
	if err != nil {
		log.Error("failed to initialize scheduler", "error", err)
		panic("failed to initialize scheduler: " + err.Error())
	}

	worker, err := scheduler.NewWorker(cfg, reportService, log)
	if err != nil {
		log.Error("failed to initialize worker", "error", err)
		panic("failed to initialize worker: " + err.Error())
	}

	go func() {
		if err := sched.Run(); err != nil {
			log.Error("scheduler stopped", "error", err.Error())
			stop()
		}
	}()
	defer sched.Shutdown()

	// Blocks until the context is canceled.
	worker.Run(ctx)

	log.Info("scheduler shut down")
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
