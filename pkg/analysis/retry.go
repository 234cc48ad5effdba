package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RetryPolicy retries a generator call a fixed number of times with a fixed
// delay between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Logger      zerolog.Logger

	// sleep waits between attempts; tests replace it.
	sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy makes three attempts one second apart.
func DefaultRetryPolicy(logger zerolog.Logger) RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: time.Second, Logger: logger}
}

// Do calls fn until it succeeds or the attempts run out. Every error is
// retried; only context cancellation stops early. The final error names the
// provider and wraps the last failure.
func (p RetryPolicy) Do(ctx context.Context, provider string, fn func(context.Context) (string, error)) (string, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	sleep := p.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := fn(ctx)
		if err == nil {
			return text, nil
		}
		lastErr = err
		p.Logger.Warn().Err(err).Str("provider", provider).Int("attempt", attempt).Msg("generation attempt failed")

		if ctx.Err() != nil {
			return "", fmt.Errorf("%s call canceled: %w", provider, ctx.Err())
		}
		if attempt < attempts {
			if err := sleep(ctx, p.Delay); err != nil {
				return "", fmt.Errorf("%s call canceled: %w", provider, err)
			}
		}
	}
	return "", fmt.Errorf("%s call failed after %d attempts. Final error: %w", provider, attempts, lastErr)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
