package retry

import (
	"context"
	"fmt"
	"time"

	"newswire/config"
)

// Do runs fn up to attempts times with exponential backoff between tries.
// The label only shows up in logs. Context cancellation aborts the wait.
func Do(ctx context.Context, label string, attempts int, baseDelay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := baseDelay
	for i := 1; i <= attempts; i++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if i == attempts {
			break
		}

		config.Logger.Warnf("%s failed (attempt %d/%d), retrying in %s: %v", label, i, attempts, delay, lastErr)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}

	return fmt.Errorf("%s failed after %d attempts: %w", label, attempts, lastErr)
}
