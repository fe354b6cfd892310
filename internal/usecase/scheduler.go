package usecase

import (
	"context"
	"log/slog"
	"time"

	"stockpulse/internal/ports"
)

// Scheduler binds the interval driver to the pipeline use case.
type Scheduler struct {
	driver     ports.Scheduler
	pipeline   *Pipeline
	fetchLimit int
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring analysis cycles.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, fetchLimit int, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{driver: driver, pipeline: pipeline, fetchLimit: fetchLimit, logger: logger}
}

// Start registers the pipeline with the provided driver.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		s.logger.Info("starting analysis cycle", "trigger", trigger.UTC().Format(time.RFC3339))
		s.pipeline.RunCycle(ctx, s.fetchLimit)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying driver.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
