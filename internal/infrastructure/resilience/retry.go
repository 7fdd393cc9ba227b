package resilience

import (
	"context"
	"fmt"
	"time"
)

// Policy controls how an operation is retried
type Policy struct {
	// MaxAttempts is the total number of tries, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int

	// BaseDelay is the wait before the first retry. Each further retry
	// doubles the previous delay.
	BaseDelay time.Duration

	// MaxDelay caps the backoff delay. Zero means no cap.
	MaxDelay time.Duration

	// Retryable decides whether an error is worth another attempt.
	// A nil predicate retries every error.
	Retryable func(error) bool
}

// Do runs op under the policy, backing off exponentially between attempts.
// It returns nil as soon as op succeeds. Errors the policy considers not
// retryable propagate immediately; when attempts run out the last error is
// returned wrapped with the attempt count.
func Do(ctx context.Context, policy Policy, op func(context.Context) error) error {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, policy.delay(attempt-1)); err != nil {
				return err
			}
		}

		lastErr = op(ctx)
		if lastErr == nil {
			return nil
		}
		if policy.Retryable != nil && !policy.Retryable(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

// delay computes the backoff for the given retry ordinal (0-based).
func (p Policy) delay(retry int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < retry; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// sleep waits for d or until the context is done, whichever comes first.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
