package scheduler

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"resale_support_backend/internal/reports"
	"resale_support_backend/platform/config"
	"resale_support_backend/platform/logger"
)

// Worker consumes the report tasks and runs the report service.
type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	reports *reports.Service
	log     *logger.Logger
}

// NewWorker creates the asynq worker with the report handlers registered.
func NewWorker(cfg config.SchedulerConfig, reportsSvc *reports.Service, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	// Report builds are a couple of aggregate queries plus one push; two
	// concurrent tasks is already more than the schedule produces.
	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: 2,
		Queues: map[string]int{
			"default": 1,
		},
	})

	w := &Worker{
		server:  server,
		mux:     asynq.NewServeMux(),
		reports: reportsSvc,
		log:     log,
	}

	w.mux.HandleFunc(TaskWeeklyReport, w.handleWeeklyReport)
	w.mux.HandleFunc(TaskMonthlyReport, w.handleMonthlyReport)

	return w, nil
}

func (w *Worker) handleWeeklyReport(ctx context.Context, task *asynq.Task) error {
	_, err := w.reports.RunWeekly(ctx)
	return err
}

func (w *Worker) handleMonthlyReport(ctx context.Context, task *asynq.Task) error {
	_, err := w.reports.RunMonthly(ctx)
	return err
}

// Run starts the worker and blocks until the context is canceled.
func (w *Worker) Run(ctx context.Context) {
	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err.Error())
	}
}
