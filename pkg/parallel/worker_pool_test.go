package parallel

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	results, err := Map(context.Background(), DefaultPoolConfig(), 100, func(_ context.Context, i int) (int, error) {
		return i * i, nil
	})
	require.NoError(t, err)
	require.Len(t, results, 100)
	for i, r := range results {
		assert.Equal(t, i*i, r)
	}
}

func TestMap_Empty(t *testing.T) {
	results, err := Map(context.Background(), DefaultPoolConfig(), 0, func(_ context.Context, i int) (int, error) {
		return 0, nil
	})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestMap_SingleWorkerIsSequential(t *testing.T) {
	var last int32 = -1
	results, err := Map(context.Background(), PoolConfig{MaxWorkers: 1}, 50, func(_ context.Context, i int) (int, error) {
		prev := atomic.SwapInt32(&last, int32(i))
		assert.Equal(t, int32(i-1), prev)
		return i, nil
	})
	require.NoError(t, err)
	assert.Len(t, results, 50)
}

func TestMap_ErrorCancels(t *testing.T) {
	var calls int64
	_, err := Map(context.Background(), PoolConfig{MaxWorkers: 2}, 1000, func(ctx context.Context, i int) (int, error) {
		atomic.AddInt64(&calls, 1)
		if i == 3 {
			return 0, fmt.Errorf("boom at %d", i)
		}
		return i, nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	// Cancellation stops the feed well before all 1000 run.
	assert.Less(t, atomic.LoadInt64(&calls), int64(1000))
}

func TestMap_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Map(ctx, DefaultPoolConfig(), 10, func(ctx context.Context, i int) (int, error) {
		return i, nil
	})
	require.Error(t, err)
}

func TestPoolConfig_WithWorkers(t *testing.T) {
	cfg := DefaultPoolConfig().WithWorkers(3)
	assert.Equal(t, 3, cfg.MaxWorkers)
	assert.GreaterOrEqual(t, DefaultPoolConfig().WithWorkers(0).MaxWorkers, 1)
}
