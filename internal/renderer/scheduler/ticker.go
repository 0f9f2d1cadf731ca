package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
)

// Latch is a Requester that remembers whether a tick was requested.
// Hosts poll it with Take from their own loop. Safe for concurrent use.
type Latch struct {
	pending  atomic.Bool
	requests atomic.Uint64
}

// RequestTick marks a tick as pending.
func (l *Latch) RequestTick() {
	l.pending.Store(true)
	l.requests.Add(1)
}

// Take reports whether a tick is pending and clears it.
func (l *Latch) Take() bool {
	return l.pending.Swap(false)
}

// Requests returns the total number of RequestTick calls.
func (l *Latch) Requests() uint64 {
	return l.requests.Load()
}

// Ticker delivers requested ticks at a fixed rate.
type Ticker struct {
	Latch
	interval time.Duration
}

// NewTicker creates a ticker running at hz ticks per second.
func NewTicker(hz int) (*Ticker, error) {
	if hz <= 0 {
		return nil, fmt.Errorf("invalid tick rate: %d", hz)
	}
	return &Ticker{interval: time.Second / time.Duration(hz)}, nil
}

// Interval returns the time between ticks.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Run calls deliver on each interval for which a tick was requested.
// It returns when ctx is done, when limit ticks were delivered (limit > 0),
// or when no tick is pending after a delivery, which happens once the
// scheduler is destroyed.
func (t *Ticker) Run(ctx context.Context, limit uint64, deliver func()) error {
	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	var delivered uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tk.C:
			if !t.Take() {
				return nil
			}
			deliver()
			delivered++
			if limit > 0 && delivered >= limit {
				return nil
			}
		}
	}
}
