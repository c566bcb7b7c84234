package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tinoosan/groupledger/internal/errs"
)

func TestNormalizeDSN(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@db:5432/app":                 "postgresql://u:p@db:5432/app",
		"  postgresql://u:p@db/app  ":                "postgresql://u:p@db/app",
		"postgresql+psycopg2://u:p@db/app":           "postgresql://u:p@db/app",
		"Postgres://u@db/app?sslmode=disable":        "postgresql://u@db/app?sslmode=disable",
		"host=db user=u dbname=app":                  "host=db user=u dbname=app",
		"mysql://u@db/app":                           "mysql://u@db/app",
		"":                                           "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeDSN(in), "in=%q", in)
	}
}

func TestConnect_MissingDSN(t *testing.T) {
	_, err := Connect(context.Background(), "   ")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

func TestConnect_MalformedDSN(t *testing.T) {
	_, err := Connect(context.Background(), "postgres://u:p@db:notaport/app")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrStorageUnavailable)
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	var retried []int
	err := retry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func(context.Context) error {
		calls++
		if calls < 3 {
			return errors.New("connection refused")
		}
		return nil
	}, func(attempt int, _ error) { retried = append(retried, attempt) })
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestRetry_ExhaustsBound(t *testing.T) {
	calls := 0
	cause := errors.New("connection refused")
	err := retry(context.Background(), RetryPolicy{Attempts: 3, Backoff: time.Millisecond}, func(context.Context) error {
		calls++
		return cause
	}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestRetry_StopsOnContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, RetryPolicy{Attempts: 5, Backoff: time.Hour}, func(context.Context) error {
		calls++
		return errors.New("connection refused")
	}, func(int, error) { cancel() })
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	calls := 0
	_ = retry(context.Background(), RetryPolicy{}, func(context.Context) error {
		calls++
		return errors.New("x")
	}, nil)
	assert.Equal(t, 1, calls)
}

func TestReadErr(t *testing.T) {
	assert.Nil(t, readErr("op", nil))
	assert.ErrorIs(t, readErr("op", context.DeadlineExceeded), errs.ErrStorageUnavailable)
	other := errors.New("syntax error")
	got := readErr("op", other)
	assert.ErrorIs(t, got, other)
	assert.NotErrorIs(t, got, errs.ErrStorageUnavailable)
}
