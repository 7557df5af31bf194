package usecase

import (
	"context"
	"time"

	"SeapMonitor/internal/ports"
)

// Scheduler wires the timer driver with the daily pipeline job.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
}

// NewScheduler returns a helper to start/stop the recurring job.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline}
}

// Start registers the daily job with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(time.Time) {
		s.pipeline.RunDailyJob(ctx)
	}

	return s.driver.Start(ctx, job)
}

// Stop tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
