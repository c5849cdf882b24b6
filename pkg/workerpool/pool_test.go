package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_SubmitReturnsResult(t *testing.T) {
	p := New(&Config{MaxWorkers: 2, QueueSize: 4}, nil)
	defer p.Shutdown(context.Background())

	want := errors.New("boom")
	assert.NoError(t, p.Submit(context.Background(), "ok", func(context.Context) error { return nil }))
	assert.ErrorIs(t, p.Submit(context.Background(), "fail", func(context.Context) error { return want }), want)

	s := p.Stats()
	assert.Equal(t, int64(1), s.Completed)
	assert.Equal(t, int64(1), s.Failed)
}

func TestPool_ShutdownDrainsQueue(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 16}, nil)

	var n atomic.Int32
	for i := 0; i < 10; i++ {
		require.NoError(t, p.SubmitAsync(context.Background(), "count", func(context.Context) error {
			n.Add(1)
			return nil
		}))
	}
	require.NoError(t, p.Shutdown(context.Background()))
	assert.Equal(t, int32(10), n.Load())

	assert.ErrorIs(t, p.SubmitAsync(context.Background(), "late", func(context.Context) error { return nil }), ErrWorkerPoolClosed)
	assert.True(t, p.Stats().Closed)
}

func TestPool_FullQueue(t *testing.T) {
	p := New(&Config{MaxWorkers: 1, QueueSize: 1}, nil)
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, p.SubmitAsync(context.Background(), "block", func(context.Context) error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.NoError(t, p.SubmitAsync(context.Background(), "queued", func(context.Context) error { return nil }))
	assert.ErrorIs(t, p.SubmitAsync(context.Background(), "dropped", func(context.Context) error { return nil }), ErrWorkerPoolFull)
	assert.Equal(t, int64(1), p.Stats().Dropped)

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Shutdown(ctx))
}

func TestPool_RecoversPanic(t *testing.T) {
	p := New(&Config{MaxWorkers: 1}, nil)
	defer p.Shutdown(context.Background())

	err := p.Submit(context.Background(), "panic", func(context.Context) error { panic("x") })
	assert.Error(t, err)
	assert.NoError(t, p.Submit(context.Background(), "after", func(context.Context) error { return nil }))
}
