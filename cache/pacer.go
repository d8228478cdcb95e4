package cache

import (
	"context"
	"time"
)

// Pacer yields work items one at a time with a fixed minimum interval between
// them, to respect provider rate limits (the free quotes tier allows 5
// calls/minute). The delay applies after every attempt except the last,
// whether the attempt succeeded or failed.
type Pacer struct {
	interval time.Duration
	clock    Clock
}

// NewPacer creates a Pacer with the given inter-item interval
func NewPacer(interval time.Duration, clock Clock) *Pacer {
	return &Pacer{interval: interval, clock: clock}
}

// Each invokes fn for indexes 0..n-1, pausing between consecutive
// invocations. It stops early only when the context is cancelled during a
// pause; fn's own failures are the caller's concern.
func (p *Pacer) Each(ctx context.Context, n int, fn func(i int)) error {
	for i := 0; i < n; i++ {
		fn(i)
		if i < n-1 {
			if err := p.clock.Sleep(ctx, p.interval); err != nil {
				return err
			}
		}
	}
	return nil
}
