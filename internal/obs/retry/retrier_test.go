package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDoStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("flaky")
		}
		return nil
	}, Policy{Attempts: FetchAttempts})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}

func TestDoCapsAttempts(t *testing.T) {
	calls := 0
	boom := errors.New("boom")
	var exhausted error
	err := Do(context.Background(), func() error {
		calls++
		return boom
	}, Policy{
		Attempts:  FetchAttempts,
		OnExhaust: func(last error) { exhausted = last },
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, FetchAttempts, calls)
	require.ErrorIs(t, exhausted, boom)
}

func TestDoNotRetryable(t *testing.T) {
	calls := 0
	err := Do(context.Background(), func() error {
		calls++
		return errors.New("fatal")
	}, Policy{
		Attempts:  FetchAttempts,
		Retryable: func(error) bool { return false },
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestDoNilBackoffRetriesImmediately(t *testing.T) {
	start := time.Now()
	calls := 0
	_ = Do(context.Background(), func() error {
		calls++
		return errors.New("x")
	}, Policy{Attempts: FetchAttempts})
	require.Equal(t, FetchAttempts, calls)
	require.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestDoHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Do(ctx, func() error { return errors.New("x") }, Policy{
		Attempts: FetchAttempts,
		Backoff:  ExpoJitter{Base: time.Hour},
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFetchPolicyShape(t *testing.T) {
	p := FetchPolicy("remote-1", nil)
	require.Equal(t, FetchAttempts, p.Attempts)
	require.Nil(t, p.Backoff)
	require.True(t, p.Retryable(errors.New("x")))
	require.False(t, p.Retryable(context.Canceled))
}
