package store

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRetryableError(t *testing.T) {
	require.False(t, isRetryableError(nil))
	require.True(t, isRetryableError(errors.New("database is locked")))
	require.True(t, isRetryableError(errors.New("exec: SQLITE_BUSY (5)")))
	require.False(t, isRetryableError(errors.New("UNIQUE constraint failed: kv.key")))
}

func TestRetryWithBackoff_PermanentErrorReturnsImmediately(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		return errors.New("syntax error")
	})
	require.Error(t, err)
	require.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesBusy(t *testing.T) {
	calls := 0
	err := RetryWithBackoff(func() error {
		calls++
		if calls < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, calls)
}
