package compute

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParallelForVisitsEveryIndex(t *testing.T) {
	for _, workers := range []int{1, 2, 3, 8, 64} {
		out := make([]int, 37)
		err := ParallelFor(context.Background(), len(out), workers, func(i int) error {
			out[i] = i * i
			return nil
		})
		require.NoError(t, err)
		for i, v := range out {
			assert.Equal(t, i*i, v, "workers=%d", workers)
		}
	}
}

func TestParallelForReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	var calls atomic.Int64
	err := ParallelFor(context.Background(), 1000, 4, func(i int) error {
		calls.Add(1)
		if i == 3 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
	assert.Less(t, calls.Load(), int64(1000))
}

func TestParallelForHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, b := range []Backend{Serial{}, NewCPUBackend(4)} {
		err := b.ParallelFor(ctx, 100, func(int) error { return nil })
		assert.ErrorIs(t, err, context.Canceled, b.Name())
	}
}

func TestNewPicksBackend(t *testing.T) {
	assert.Equal(t, "serial", New(1).Name())
	b := New(6)
	assert.Equal(t, "cpu", b.Name())
	assert.Equal(t, 6, b.Workers())
	assert.GreaterOrEqual(t, New(0).Workers(), 1)
}
