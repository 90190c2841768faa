package common

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryOptions {
	return RetryOptions{
		MaxAttempts:  attempts,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2,
	}
}

func TestWithRetry(t *testing.T) {
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failures  int
		err       error
		attempts  int
		wantCalls int
		wantErr   error
	}{
		{name: "succeeds first try", failures: 0, err: errBoom, attempts: 3, wantCalls: 1},
		{name: "succeeds after transient failures", failures: 2, err: errBoom, attempts: 3, wantCalls: 3},
		{name: "gives up after max attempts", failures: 5, err: errBoom, attempts: 3, wantCalls: 3, wantErr: ErrMaxRetries},
		{
			name:      "permanent error stops immediately",
			failures:  5,
			err:       &RetryableError{Err: errBoom, Retryable: false},
			attempts:  3,
			wantCalls: 1,
			wantErr:   errBoom,
		},
		{name: "rate limit is retried", failures: 1, err: ErrRateLimit, attempts: 2, wantCalls: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := WithRetry(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			}, fastRetry(tt.attempts))

			assert.Equal(t, tt.wantCalls, calls)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestWithRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0

	err := WithRetry(ctx, func() error {
		calls++
		cancel()
		return errors.New("transient")
	}, RetryOptions{MaxAttempts: 5, InitialDelay: time.Second, MaxDelay: time.Second})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("503"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("400"), Retryable: false}))
	assert.False(t, IsRetryable(errors.New("plain")))
}
