// Package scheduler runs the periodic report tasks on asynq. The API
// process registers the cron entries; the worker process consumes them.
package scheduler

import (
	"crypto/tls"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// Task type names shared between the scheduler and the worker.
const (
	TaskWeeklyReport  = "reports.weekly"
	TaskMonthlyReport = "reports.monthly"
)

// NewWeeklyReportTask creates the weekly report task. The period is derived
// from the execution time, so there is no payload.
func NewWeeklyReportTask() *asynq.Task {
	return asynq.NewTask(TaskWeeklyReport, nil)
}

// NewMonthlyReportTask creates the monthly report task.
func NewMonthlyReportTask() *asynq.Task {
	return asynq.NewTask(TaskMonthlyReport, nil)
}

func redisClientOpt(redisURL string) (asynq.RedisClientOpt, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return asynq.RedisClientOpt{}, err
	}

	var tlsConfig *tls.Config
	if opt.TLSConfig != nil {
		tlsConfig = opt.TLSConfig.Clone()
	}

	return asynq.RedisClientOpt{
		Addr:      opt.Addr,
		Password:  opt.Password,
		DB:        opt.DB,
		TLSConfig: tlsConfig,
	}, nil
}
