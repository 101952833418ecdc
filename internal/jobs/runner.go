// Package jobs runs scheduled maintenance tasks on a cron schedule.
package jobs

import (
	"log/slog"
	"sync"

	mapset "github.com/deckarep/golang-set/v2"
	cron "github.com/robfig/cron"
)

// CronJob is a task with its own cron schedule. Schedules use the
// six-field format with a leading seconds column.
type CronJob interface {
	Schedule() string
	Run()
}

// Runner owns the cron instance and guards against overlapping runs of
// the same job.
type Runner struct {
	cron    *cron.Cron
	jobs    []CronJob
	logger  *slog.Logger
	running mapset.Set[CronJob]
	mu      sync.Mutex
}

func NewRunner(logger *slog.Logger, jobs ...CronJob) *Runner {
	return &Runner{
		cron:    cron.New(),
		jobs:    jobs,
		logger:  logger,
		running: mapset.NewSet[CronJob](),
	}
}

// Start registers all jobs and starts the scheduler. A job that is
// still running when its next tick fires is skipped for that tick.
func (r *Runner) Start() error {
	for _, job := range r.jobs {
		job := job
		err := r.cron.AddFunc(job.Schedule(), func() {
			r.mu.Lock()
			if r.running.Contains(job) {
				r.mu.Unlock()
				r.logger.Warn("job still running, skipping tick")
				return
			}
			r.running.Add(job)
			r.mu.Unlock()

			defer func() {
				r.mu.Lock()
				defer r.mu.Unlock()
				r.running.Remove(job)
			}()

			job.Run()
		})
		if err != nil {
			return err
		}
	}

	r.cron.Start()
	return nil
}

func (r *Runner) Stop() {
	r.logger.Info("stopping scheduled jobs")
	r.cron.Stop()
}
