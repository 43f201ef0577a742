// Package retry retries calls to a remote engine with exponential backoff.
// Only idempotent discovery calls go through here; verification is never retried.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	authharness "github.com/mark3labs/auth-harness"
)

// Config is an exponential backoff schedule.
type Config struct {
	// MaxAttempts counts the first call.
	MaxAttempts int

	InitialDelay time.Duration
	MaxDelay     time.Duration

	// Multiplier scales the delay after each failed attempt.
	Multiplier float64
}

// DefaultConfig is used by the remote engine client unless overridden.
var DefaultConfig = Config{
	MaxAttempts:  3,
	InitialDelay: 100 * time.Millisecond,
	MaxDelay:     2 * time.Second,
	Multiplier:   2.0,
}

// IsRetryable reports whether a failed attempt may be repeated.
type IsRetryable func(error) bool

// EngineUnavailable retries transport failures and nothing else. An engine
// that answered, even with an error, is not asked again.
func EngineUnavailable(err error) bool {
	return errors.Is(err, authharness.ErrEngineUnavailable)
}

// Do runs fn until it succeeds, returns a non-retryable error, the attempts
// run out or ctx is done. Retries are logged at debug level under op.
func Do[T any](
	ctx context.Context,
	config Config,
	logger *zap.Logger,
	op string,
	isRetryable IsRetryable,
	fn func(context.Context) (T, error),
) (T, error) {
	var zero T
	var lastErr error
	delay := config.InitialDelay
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, fmt.Errorf("%s: %w", op, err)
		}

		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			return zero, err
		}
		if attempt == config.MaxAttempts {
			break
		}

		logger.Debug("retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err))

		select {
		case <-time.After(delay):
			delay = time.Duration(float64(delay) * config.Multiplier)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		case <-ctx.Done():
			return zero, fmt.Errorf("%s: %w", op, ctx.Err())
		}
	}

	return zero, fmt.Errorf("%s: giving up after %d attempts: %w", op, config.MaxAttempts, lastErr)
}
