package imageloader

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy retries an operation a fixed number of times with a fixed
// wait in between. Only errors the predicate accepts are retried; any
// other error aborts immediately.
type RetryPolicy struct {
	MaxAttempts int
	Wait        time.Duration
}

// Do runs op until it succeeds, returns a non-retryable error, the policy
// is exhausted, or ctx is canceled. Exhaustion is reported as a
// TransientError wrapping the last attempt's error.
func (p RetryPolicy) Do(ctx context.Context, op func() error, retryable func(error) bool) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) {
			return lastErr
		}
		if attempt == attempts {
			break
		}

		select {
		case <-time.After(p.Wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return &TransientError{Attempts: attempts, Err: lastErr}
}

// notValidation accepts every error except validation failures, which are
// attributable to the image rather than the network.
func notValidation(err error) bool {
	var ve *ValidationError
	return !errors.As(err, &ve)
}
