package repositories

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsTransient(t *testing.T) {
	for _, code := range []string{"40001", "40P01", "55P03"} {
		err := fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: code})
		assert.True(t, IsTransient(err), code)
	}
	assert.False(t, IsTransient(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsTransient(errors.New("boom")))
	assert.False(t, IsTransient(nil))
}

func TestRetryTransient_RetriesOnce(t *testing.T) {
	calls := 0
	err := RetryTransient(context.Background(), 2, func(context.Context) error {
		calls++
		if calls == 1 {
			return &pgconn.PgError{Code: "40P01"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryTransient_GivesUp(t *testing.T) {
	calls := 0
	err := RetryTransient(context.Background(), 2, func(context.Context) error {
		calls++
		return &pgconn.PgError{Code: "40001"}
	})
	require.Error(t, err)
	assert.True(t, IsTransient(err))
	assert.Equal(t, 2, calls)
}

func TestRetryTransient_NonTransientNotRetried(t *testing.T) {
	sentinel := errors.New("wrong_status")
	calls := 0
	err := RetryTransient(context.Background(), 3, func(context.Context) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}
