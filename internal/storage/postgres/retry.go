package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/tinoosan/groupledger/internal/metrics"
)

// retry runs op until it succeeds, p.Attempts is exhausted or ctx is done.
// onRetry is called before each backoff sleep.
func retry(ctx context.Context, p RetryPolicy, op func(context.Context) error, onRetry func(attempt int, err error)) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = op(ctx); err == nil {
			metrics.StorageAcquireAttempts.WithLabelValues("ok").Inc()
			return nil
		}
		if ctx.Err() != nil {
			metrics.StorageAcquireAttempts.WithLabelValues("exhausted").Inc()
			return fmt.Errorf("%w: last error: %v", ctx.Err(), err)
		}
		if i == attempts {
			break
		}
		metrics.StorageAcquireAttempts.WithLabelValues("retry").Inc()
		if onRetry != nil {
			onRetry(i, err)
		}
		t := time.NewTimer(p.Backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			metrics.StorageAcquireAttempts.WithLabelValues("exhausted").Inc()
			return fmt.Errorf("%w: last error: %v", ctx.Err(), err)
		case <-t.C:
		}
	}
	metrics.StorageAcquireAttempts.WithLabelValues("exhausted").Inc()
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
