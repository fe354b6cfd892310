package scheduler

import (
	"context"
	"log/slog"
	"time"

	"stockpulse/internal/ports"
)

// IntervalScheduler runs a job immediately, then at a fixed interval, until
// the context is canceled or Stop is called. A panic inside one tick is
// recovered and logged; it never stops future ticks or the process.
type IntervalScheduler struct {
	interval time.Duration
	logger   *slog.Logger
	stop     chan struct{}
}

var _ ports.Scheduler = (*IntervalScheduler)(nil)

// NewIntervalScheduler builds a scheduler with the given cycle interval.
func NewIntervalScheduler(interval time.Duration, logger *slog.Logger) *IntervalScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &IntervalScheduler{interval: interval, logger: logger}
}

// Start begins ticking. The first execution happens immediately so the
// system has data before the first interval elapses.
func (s *IntervalScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	if s.stop != nil {
		return nil
	}

	s.stop = make(chan struct{})
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.runTick(job, time.Now())
		for {
			select {
			case t := <-ticker.C:
				s.runTick(job, t)
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the ticker goroutine.
func (s *IntervalScheduler) Stop(ctx context.Context) error {
	if s.stop == nil {
		return nil
	}
	close(s.stop)
	s.stop = nil
	return nil
}

func (s *IntervalScheduler) runTick(job func(time.Time), trigger time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("scheduled cycle panicked", "panic", r)
		}
	}()
	job(trigger)
}
