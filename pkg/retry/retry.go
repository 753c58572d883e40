package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"
)

// Config holds retry configuration
type Config struct {
	MaxAttempts     uint
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	MaxTotalTimeout time.Duration
}

// DefaultConfig is used when dialling stores at startup
func DefaultConfig() Config {
	return Config{
		MaxAttempts:     10,
		InitialDelay:    100 * time.Millisecond,
		MaxDelay:        10 * time.Second,
		BackoffFactor:   2.0,
		MaxTotalTimeout: 60 * time.Second,
	}
}

func (c Config) backOff() *backoff.ExponentialBackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.InitialDelay
	b.MaxInterval = c.MaxDelay
	b.Multiplier = c.BackoffFactor
	b.RandomizationFactor = 0
	return b
}

// Do executes fn with exponential backoff until it succeeds, the attempts are
// exhausted, or ctx ends. Errors wrapped with Permanent stop the loop at once.
func Do(ctx context.Context, cfg Config, fn func() error) error {
	return DoWithLog(ctx, cfg, "", fn, nil)
}

// DoWithLog is Do with a hook invoked before every wait
func DoWithLog(ctx context.Context, cfg Config, serviceName string, fn func() error, logFn func(attempt int, err error, nextDelay time.Duration)) error {
	attempt := 0
	opts := []backoff.RetryOption{
		backoff.WithBackOff(cfg.backOff()),
		backoff.WithNotify(func(err error, next time.Duration) {
			if logFn != nil {
				logFn(attempt, err, next)
			}
		}),
	}
	if cfg.MaxAttempts > 0 {
		opts = append(opts, backoff.WithMaxTries(cfg.MaxAttempts))
	}
	if cfg.MaxTotalTimeout > 0 {
		opts = append(opts, backoff.WithMaxElapsedTime(cfg.MaxTotalTimeout))
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		return struct{}{}, fn()
	}, opts...)
	if err != nil {
		if serviceName != "" {
			return fmt.Errorf("%s: gave up after %d attempts: %w", serviceName, attempt, err)
		}
		return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
	}
	return nil
}

// LogAttempt returns a DoWithLog hook that reports retries on logger
func LogAttempt(logger zerolog.Logger, serviceName string) func(int, error, time.Duration) {
	return func(attempt int, err error, next time.Duration) {
		logger.Warn().
			Err(err).
			Str("service", serviceName).
			Int("attempt", attempt).
			Dur("next_delay", next).
			Msg("connection attempt failed, retrying")
	}
}

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	return backoff.Permanent(err)
}
