// Package poller runs a callback immediately and then on a fixed interval,
// with at most one interval active at a time.
package poller

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
)

// Func is invoked on every cycle. It must honour ctx cancellation.
type Func func(ctx context.Context)

// Poller owns a single cancellable interval.
type Poller struct {
	clock    quartz.Clock
	cancel   context.CancelFunc
	waiter   quartz.Waiter
	interval time.Duration
	gen      uint64
	mu       sync.Mutex
}

// New creates a stopped poller. A nil clock uses the real clock.
func New(clock quartz.Clock) *Poller {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Poller{clock: clock}
}

// Start cancels any running interval, invokes fn once and then schedules it
// every interval until Stop or until ctx is done. The first invocation runs
// on the caller's goroutine.
func (p *Poller) Start(ctx context.Context, fn Func, interval time.Duration) {
	p.StartIf(ctx, fn, interval, nil)
}

// StartIf is Start gated by ok. ok is evaluated under the lock Stop takes,
// so a Stop issued after ok turns false always wins over this start. A nil
// ok always passes. It reports whether the interval was started.
func (p *Poller) StartIf(ctx context.Context, fn Func, interval time.Duration, ok func() bool) bool {
	p.mu.Lock()
	if ok != nil && !ok() {
		p.mu.Unlock()
		return false
	}
	cycleCtx, cancel := context.WithCancel(ctx)
	prevCancel, prevWaiter := p.cancel, p.waiter
	p.gen++
	gen := p.gen
	p.cancel, p.waiter, p.interval = cancel, nil, interval
	p.mu.Unlock()

	release(prevCancel, prevWaiter)

	fn(cycleCtx)

	p.mu.Lock()
	defer p.mu.Unlock()
	// A Stop or a newer Start may have run while fn was executing.
	if p.gen != gen || cycleCtx.Err() != nil {
		return true
	}
	p.waiter = p.clock.TickerFunc(cycleCtx, interval, func() error {
		fn(cycleCtx)
		return nil
	}, "poller")
	return true
}

// Stop cancels the active interval and waits for a running tick to return.
// Calling Stop on a stopped poller does nothing.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, waiter := p.cancel, p.waiter
	p.cancel, p.waiter = nil, nil
	p.gen++
	p.mu.Unlock()

	release(cancel, waiter)
}

func release(cancel context.CancelFunc, waiter quartz.Waiter) {
	if cancel == nil {
		return
	}
	cancel()
	if waiter != nil {
		_ = waiter.Wait()
	}
}

// Running reports whether an interval is scheduled.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Interval returns the interval of the last Start.
func (p *Poller) Interval() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.interval
}
