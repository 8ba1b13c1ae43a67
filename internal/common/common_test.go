package common

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	cause := errors.New("permission denied")
	err := NewUserError("Failed to write output", cause)

	assert.Equal(t, "Failed to write output: permission denied", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "bare", NewUserError("bare", nil).Error())
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		err  error
		name string
		want bool
	}{
		{name: "busy database", err: fmt.Errorf("insert: %w", ErrDatabaseBusy), want: true},
		{name: "retryable wrapper", err: &RetryableError{Err: errors.New("x"), Retryable: true}, want: true},
		{name: "non retryable wrapper", err: &RetryableError{Err: errors.New("x")}, want: false},
		{name: "canceled", err: context.Canceled, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsRetryable(tt.err))
		})
	}
}

func TestWithRetry(t *testing.T) {
	opts := RetryOptions{MaxAttempts: 3, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	t.Run("succeeds after busy attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			if calls < 3 {
				return ErrDatabaseBusy
			}
			return nil
		}, opts)
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := WithRetry(context.Background(), func() error {
			calls++
			return ErrDatabaseBusy
		}, opts)
		require.ErrorIs(t, err, ErrMaxRetries)
		assert.ErrorIs(t, err, ErrDatabaseBusy)
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent error returns immediately", func(t *testing.T) {
		calls := 0
		boom := errors.New("constraint failed")
		err := WithRetry(context.Background(), func() error {
			calls++
			return boom
		}, opts)
		assert.Equal(t, boom, err)
		assert.Equal(t, 1, calls)
	})
}

func TestNewLogHandler(t *testing.T) {
	var buf bytes.Buffer

	h, err := NewLogHandler(&buf, "warn", "json")
	require.NoError(t, err)
	logger := slog.New(h)
	logger.Info("hidden")
	logger.Warn("shown", "file", "S001.txt")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"shown"`)
	assert.Contains(t, out, `"file":"S001.txt"`)

	_, err = NewLogHandler(&buf, "verbose", "json")
	require.ErrorIs(t, err, ErrInvalidConfig)
	_, err = NewLogHandler(&buf, "info", "xml")
	require.ErrorIs(t, err, ErrInvalidConfig)
}
