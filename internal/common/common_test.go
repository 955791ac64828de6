package common

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Veraticus/passbook/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	inner := errors.New("boom")
	err := NewUserError("could not read export", inner)

	assert.Equal(t, "could not read export: boom", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.Equal(t, "plain", NewUserError("plain", nil).Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrSheetsRateLimit))
	assert.True(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: true}))
	assert.False(t, IsRetryable(&RetryableError{Err: errors.New("x"), Retryable: false}))
	assert.False(t, IsRetryable(ErrInvalidConfig))
}

func TestWithRetry(t *testing.T) {
	opts := service.RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	t.Run("succeeds after failures", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return errors.New("transient")
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return errors.New("transient")
		}, opts)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrRetriesExhausted)
		assert.Equal(t, 3, calls)
	})

	t.Run("non-retryable stops", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return &RetryableError{Err: errors.New("bad request"), Retryable: false}
		}, opts)
		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("quota error waits for the ceiling", func(t *testing.T) {
		b := newBackoff(service.RetryOptions{InitialDelay: time.Millisecond, MaxDelay: time.Second})
		assert.Equal(t, time.Millisecond, b.wait(errors.New("transient")))
		assert.Equal(t, 2*time.Millisecond, b.wait(errors.New("transient")))
		assert.Equal(t, time.Second, b.wait(ErrSheetsRateLimit))
		assert.Equal(t, time.Second, b.wait(errors.New("transient")))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		err := WithRetry(ctx, func() error { return errors.New("transient") }, service.RetryOptions{MaxAttempts: 5, InitialDelay: time.Hour, MaxDelay: time.Hour})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, slog.LevelInfo, "json")
	require.NoError(t, err)
	logger.Debug("hidden")
	logger.Info("shown", "orders", 3)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"orders":3`)

	_, err = NewLogger(&buf, slog.LevelInfo, "xml")
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = ParseLevel("verbose")
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
