// Package retry provides a small exponential-backoff wrapper used around
// external provider calls. Delays grow as baseDelay * 2^attempt plus a
// random jitter of up to half the base delay.
package retry

import (
	"context"
	"math/rand"
	"time"
)

// Default budgets chosen so that a fully exhausted retry loop stays well
// under the gateway's per-request latency budget.
const (
	DefaultAttempts      = 3
	TranslationBaseDelay = 300 * time.Millisecond
	SpeechBaseDelay      = 400 * time.Millisecond
)

// Do invokes op up to attempts times. On failure it waits
// baseDelay*2^i plus jitter before the next attempt. The last failure is
// returned unchanged; no delay is taken after the final attempt.
func Do[T any](ctx context.Context, attempts int, baseDelay time.Duration, op func(context.Context) (T, error)) (T, error) {
	var zero T
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 0; i < attempts; i++ {
		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if i == attempts-1 {
			break
		}

		select {
		case <-time.After(backoffDelay(baseDelay, i)):
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}

	return zero, lastErr
}

// backoffDelay computes the wait before retry i+1.
func backoffDelay(baseDelay time.Duration, attempt int) time.Duration {
	delay := baseDelay << uint(attempt)
	jitterRange := int64(baseDelay) / 2
	if jitterRange > 0 {
		delay += time.Duration(rand.Int63n(jitterRange))
	}
	return delay
}
