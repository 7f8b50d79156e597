package resolver

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultInterval is the minimum spacing between registry calls.
const DefaultInterval = 50 * time.Millisecond

// Pacer gates outbound lookups.
type Pacer interface {
	Wait(ctx context.Context) error
}

// IntervalPacer admits at most one call per interval.
type IntervalPacer struct {
	limiter  *rate.Limiter
	interval time.Duration
}

// NewIntervalPacer creates a pacer with the given minimum interval. A zero
// or negative interval never blocks.
func NewIntervalPacer(interval time.Duration) *IntervalPacer {
	if interval <= 0 {
		return &IntervalPacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &IntervalPacer{
		limiter:  rate.NewLimiter(rate.Every(interval), 1),
		interval: interval,
	}
}

// Wait blocks until the next call is allowed or ctx is done.
func (p *IntervalPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// Interval returns the configured minimum interval, or 0 when unpaced.
func (p *IntervalPacer) Interval() time.Duration {
	return p.interval
}

// NopPacer never blocks.
type NopPacer struct{}

// Wait returns ctx.Err() without blocking.
func (NopPacer) Wait(ctx context.Context) error { return ctx.Err() }
