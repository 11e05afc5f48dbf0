package dialogue

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// RetryPolicy is the bounded-retry-with-backoff policy applied to
// every backend call the loop makes. Exhaustion never panics the
// batch; the caller downgrades the run instead.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// DefaultRetryPolicy allows 3 attempts with a short linear backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 500 * time.Millisecond}
}

// Do runs fn up to Attempts times with linear backoff, stopping early
// on success or context cancellation.
func (p RetryPolicy) Do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		if err := ctx.Err(); err != nil {
			return goerr.Wrap(err, "retry aborted")
		}
		if i > 0 && p.Backoff > 0 {
			select {
			case <-ctx.Done():
				return goerr.Wrap(ctx.Err(), "retry aborted")
			case <-time.After(p.Backoff * time.Duration(i)):
			}
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}

	return goerr.Wrap(lastErr, "retry budget exhausted", goerr.V("attempts", attempts))
}
