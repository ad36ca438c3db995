package poller

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const interval = 10 * time.Second

func testContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	t.Cleanup(cancel)
	return ctx
}

type counter struct {
	n atomic.Int32
}

func (c *counter) fn(context.Context) { c.n.Add(1) }

func (c *counter) get() int { return int(c.n.Load()) }

func TestStart_ImmediateThenInterval(t *testing.T) {
	ctx := testContext(t)
	clock := quartz.NewMock(t)
	p := New(clock)
	t.Cleanup(p.Stop)

	var c counter
	p.Start(ctx, c.fn, interval)
	assert.Equal(t, 1, c.get(), "first cycle runs immediately")
	assert.True(t, p.Running())
	assert.Equal(t, interval, p.Interval())

	clock.Advance(interval).MustWait(ctx)
	assert.Equal(t, 2, c.get())

	clock.Advance(interval).MustWait(ctx)
	assert.Equal(t, 3, c.get())
}

func TestStart_ReentrantKeepsOneInterval(t *testing.T) {
	ctx := testContext(t)
	clock := quartz.NewMock(t)
	p := New(clock)
	t.Cleanup(p.Stop)

	var first, second counter
	p.Start(ctx, first.fn, interval)
	p.Start(ctx, second.fn, interval)

	assert.Equal(t, 1, first.get())
	assert.Equal(t, 1, second.get())

	clock.Advance(interval).MustWait(ctx)
	clock.Advance(interval).MustWait(ctx)

	assert.Equal(t, 1, first.get(), "replaced interval must not fire")
	assert.Equal(t, 3, second.get())
}

func TestStart_SameCallbackTwice(t *testing.T) {
	ctx := testContext(t)
	clock := quartz.NewMock(t)
	p := New(clock)
	t.Cleanup(p.Stop)

	var c counter
	p.Start(ctx, c.fn, interval)
	p.Start(ctx, c.fn, interval)
	require.Equal(t, 2, c.get())

	clock.Advance(interval).MustWait(ctx)
	assert.Equal(t, 3, c.get(), "exactly one tick per interval")
}

func TestStop(t *testing.T) {
	ctx := testContext(t)
	clock := quartz.NewMock(t)
	p := New(clock)

	// Stopping a poller that never started is a no-op.
	p.Stop()
	assert.False(t, p.Running())

	var c counter
	var seen context.Context
	p.Start(ctx, func(cycleCtx context.Context) {
		seen = cycleCtx
		c.fn(cycleCtx)
	}, interval)

	p.Stop()
	p.Stop()
	assert.False(t, p.Running())
	require.NotNil(t, seen)
	assert.ErrorIs(t, seen.Err(), context.Canceled)

	clock.Advance(interval).MustWait(ctx)
	assert.Equal(t, 1, c.get())
}

func TestStop_DuringFirstCycle(t *testing.T) {
	ctx := testContext(t)
	clock := quartz.NewMock(t)
	p := New(clock)

	var c counter
	p.Start(ctx, func(cycleCtx context.Context) {
		c.fn(cycleCtx)
		// Simulates a logout arriving while the first fetch is in flight.
		go p.Stop()
		<-cycleCtx.Done()
	}, interval)

	assert.False(t, p.Running())
	clock.Advance(interval).MustWait(ctx)
	assert.Equal(t, 1, c.get(), "no interval is scheduled after a stop")
}

func TestStartIf(t *testing.T) {
	ctx := testContext(t)
	clock := quartz.NewMock(t)
	p := New(clock)
	t.Cleanup(p.Stop)

	var c counter
	started := p.StartIf(ctx, c.fn, interval, func() bool { return false })
	assert.False(t, started)
	assert.False(t, p.Running())
	assert.Equal(t, 0, c.get(), "a refused start runs nothing")

	var signedIn atomic.Bool
	signedIn.Store(true)
	require.True(t, p.StartIf(ctx, c.fn, interval, signedIn.Load))
	assert.Equal(t, 1, c.get())
	assert.True(t, p.Running())

	// The condition turns false and a stop follows; a late start must not
	// bring the interval back.
	signedIn.Store(false)
	p.Stop()
	assert.False(t, p.StartIf(ctx, c.fn, interval, signedIn.Load))
	assert.False(t, p.Running())

	clock.Advance(interval).MustWait(ctx)
	assert.Equal(t, 1, c.get())
}

func TestStart_ParentContextCancelled(t *testing.T) {
	ctx := testContext(t)
	clock := quartz.NewMock(t)
	p := New(clock)
	t.Cleanup(p.Stop)

	parent, cancel := context.WithCancel(ctx)
	var c counter
	p.Start(parent, c.fn, interval)
	cancel()

	// Stop must still return once the ticker has observed the cancellation.
	p.Stop()
	clock.Advance(interval).MustWait(ctx)
	assert.Equal(t, 1, c.get())
}

func TestRealClock(t *testing.T) {
	p := New(nil)

	var c counter
	p.Start(context.Background(), c.fn, 5*time.Millisecond)
	require.Eventually(t, func() bool { return c.get() >= 3 }, 2*time.Second, time.Millisecond)

	p.Stop()
	stopped := c.get()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, stopped, c.get())
}
