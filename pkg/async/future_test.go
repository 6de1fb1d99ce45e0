package async_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s0hv/manga-tracker-auth/pkg/async"
)

func TestExec_ResolvesValue(t *testing.T) {
	t.Parallel()

	f := async.Exec(context.Background(), func(ctx context.Context) (int, error) {
		return 42, nil
	})

	got, err := f.Await()
	require.NoError(t, err)
	assert.Equal(t, 42, got)
	assert.True(t, f.IsComplete())
}

func TestExec_ResolvesError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("boom")
	f := async.Exec(context.Background(), func(ctx context.Context) (int, error) {
		return 0, wantErr
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, wantErr)
}

func TestExec_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := async.Exec(ctx, func(ctx context.Context) (int, error) {
		t.Error("fn must not run with a cancelled context")
		return 0, nil
	})

	_, err := f.Await()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFuture_SharedResult(t *testing.T) {
	t.Parallel()

	var calls int
	f := async.Exec(context.Background(), func(ctx context.Context) (string, error) {
		calls++
		return "shared", nil
	})

	const waiters = 50
	results := make([]string, waiters)
	var wg sync.WaitGroup
	wg.Add(waiters)
	for i := range waiters {
		go func(idx int) {
			defer wg.Done()
			v, err := f.Await()
			require.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, calls)
	for _, v := range results {
		assert.Equal(t, "shared", v)
	}
}

func TestFuture_AwaitWithTimeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	f := async.Exec(context.Background(), func(ctx context.Context) (int, error) {
		<-release
		return 7, nil
	})

	_, err := f.AwaitWithTimeout(20 * time.Millisecond)
	assert.ErrorIs(t, err, async.ErrTimeout)
	assert.False(t, f.IsComplete())

	close(release)

	got, err := f.AwaitWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}
