package scheduler

import (
	"fmt"

	"github.com/hibiken/asynq"

	"resale_support_backend/platform/config"
	"resale_support_backend/platform/logger"
)

// Scheduler enqueues the report tasks on their cron slots.
type Scheduler struct {
	scheduler *asynq.Scheduler
	log       *logger.Logger
}

// NewScheduler creates the cron scheduler with both report entries
// registered.
func NewScheduler(cfg config.SchedulerConfig, log *logger.Logger) (*Scheduler, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL)
	if err != nil {
		return nil, err
	}

	scheduler := asynq.NewScheduler(opt, &asynq.SchedulerOpts{})

	if _, err := scheduler.Register(cfg.GetWeeklyReportCron(), NewWeeklyReportTask()); err != nil {
		return nil, fmt.Errorf("register weekly report: %w", err)
	}
	if _, err := scheduler.Register(cfg.GetMonthlyReportCron(), NewMonthlyReportTask()); err != nil {
		return nil, fmt.Errorf("register monthly report: %w", err)
	}

	log.Info("report schedule registered",
		"weekly_cron", cfg.GetWeeklyReportCron(),
		"monthly_cron", cfg.GetMonthlyReportCron())

	return &Scheduler{scheduler: scheduler, log: log}, nil
}

// Run starts the scheduler and blocks until Shutdown is called.
func (s *Scheduler) Run() error {
	return s.scheduler.Run()
}

// Shutdown stops the scheduler.
func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
