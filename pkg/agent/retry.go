package agent

import (
	"context"
	"time"

	"github.com/googleapis/gax-go/v2"
)

// Backoff schedule for retryable failures: 500ms, 1s, 2s, ... capped
// at 8s, with gax's default jitter.
const (
	retryInitial = 500 * time.Millisecond
	retryMax     = 8 * time.Second
)

// withRetry runs f, retrying retryable failures with exponential
// backoff. Non-retryable failures and context cancellation return
// immediately. f is responsible for classifying its own errors.
func (a *Agent) withRetry(ctx context.Context, f func(ctx context.Context) error) error {
	bo := gax.Backoff{Initial: retryInitial, Max: retryMax, Multiplier: 2}

	for attempt := 0; ; attempt++ {
		err := f(ctx)
		if err == nil {
			return nil
		}
		if attempt >= a.cfg.MaxRetries || !retryable(err) {
			return err
		}
		if serr := gax.Sleep(ctx, bo.Pause()); serr != nil {
			// Canceled while backing off: report the original failure.
			return err
		}
	}
}

func retryable(err error) bool {
	if e, ok := AsError(err); ok {
		return e.Retryable()
	}
	return false
}
