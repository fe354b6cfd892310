package rate

import (
	"context"
	"time"

	"stockpulse/internal/ports"
)

// IntervalGate paces sequential calls by waiting a fixed delay. The analyzer
// quota is global and per-caller, so the pipeline calls it between posts
// rather than sleeping inline.
type IntervalGate struct {
	delay time.Duration
}

var _ ports.Pacer = (*IntervalGate)(nil)

// NewIntervalGate builds a gate with the given inter-call delay.
func NewIntervalGate(delay time.Duration) *IntervalGate {
	return &IntervalGate{delay: delay}
}

// Wait blocks for the configured delay or until ctx is canceled.
func (g *IntervalGate) Wait(ctx context.Context) error {
	if g.delay <= 0 {
		return nil
	}

	timer := time.NewTimer(g.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
