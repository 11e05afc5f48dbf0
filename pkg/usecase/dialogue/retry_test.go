package dialogue_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/simforge/wander/pkg/usecase/dialogue"
)

func TestRetrySucceedsAfterTransientFailure(t *testing.T) {
	policy := dialogue.RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("transient")
		}
		return nil
	})
	gt.NoError(t, err)
	gt.Equal(t, calls, 3)
}

func TestRetryExhaustsBudget(t *testing.T) {
	policy := dialogue.RetryPolicy{Attempts: 3, Backoff: time.Millisecond}

	calls := 0
	err := policy.Do(context.Background(), func() error {
		calls++
		return errors.New("permanent")
	})
	gt.Error(t, err)
	gt.Equal(t, calls, 3)
}

func TestRetryStopsOnCanceledContext(t *testing.T) {
	policy := dialogue.RetryPolicy{Attempts: 5, Backoff: time.Minute}

	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := policy.Do(ctx, func() error {
		calls++
		cancel()
		return errors.New("failing")
	})
	gt.Error(t, err)
	gt.Equal(t, calls, 1)
}
