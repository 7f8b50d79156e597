package resolver

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalPacer_SpacesCalls(t *testing.T) {
	t.Parallel()

	p := NewIntervalPacer(30 * time.Millisecond)
	assert.Equal(t, 30*time.Millisecond, p.Interval())

	ctx := context.Background()
	start := time.Now()
	for range 3 {
		require.NoError(t, p.Wait(ctx))
	}
	// First call is free; the next two wait one interval each.
	assert.GreaterOrEqual(t, time.Since(start), 55*time.Millisecond)
}

func TestIntervalPacer_ZeroNeverBlocks(t *testing.T) {
	t.Parallel()

	p := NewIntervalPacer(0)
	assert.Zero(t, p.Interval())

	start := time.Now()
	for range 100 {
		require.NoError(t, p.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestIntervalPacer_IntervalIsExact(t *testing.T) {
	t.Parallel()

	for _, d := range []time.Duration{time.Millisecond, 30 * time.Millisecond, 50 * time.Millisecond, 70 * time.Millisecond, time.Second} {
		assert.Equal(t, d, NewIntervalPacer(d).Interval(), "interval %s", d)
	}
	assert.Zero(t, NewIntervalPacer(-time.Second).Interval())
}

func TestIntervalPacer_ContextCancelled(t *testing.T) {
	t.Parallel()

	p := NewIntervalPacer(time.Hour)
	require.NoError(t, p.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	assert.Error(t, p.Wait(ctx))
}

func TestNopPacer(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NopPacer{}.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, NopPacer{}.Wait(ctx))
}
