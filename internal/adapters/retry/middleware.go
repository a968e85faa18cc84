package retry

import (
	"context"
	"math"
	"time"

	"fable/pkg/errors"
)

// Config contains retry configuration
type Config struct {
	MaxAttempts  int           // Total attempts including the first
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Cap applied to the computed delay
	Multiplier   float64       // Exponential backoff multiplier
}

// DefaultConfig returns the configuration used for vendor generation
// calls: 3 attempts with a 1s/2s exponential backoff.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// Middleware provides retry functionality with exponential backoff.
// Every error is retried; transient vendor failures are indistinguishable
// from permanent ones at this layer, and the caller has its own fallback
// cascade for calls that exhaust their attempts.
type Middleware struct {
	config Config
}

// New creates a new retry middleware
func New(config Config) *Middleware {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.InitialDelay <= 0 {
		config.InitialDelay = time.Second
	}
	if config.MaxDelay <= 0 {
		config.MaxDelay = 30 * time.Second
	}
	if config.Multiplier <= 0 {
		config.Multiplier = 2.0
	}

	return &Middleware{config: config}
}

// Do executes the function with retry logic
func (m *Middleware) Do(ctx context.Context, fn func() error) error {
	var lastErr error

	for attempt := 0; attempt < m.config.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if attempt == m.config.MaxAttempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "retry cancelled")
		case <-time.After(m.delay(attempt)):
		}
	}

	return errors.Wrapf(lastErr, "max attempts (%d) exceeded", m.config.MaxAttempts)
}

// delay computes the exponential backoff for a completed attempt index.
func (m *Middleware) delay(attempt int) time.Duration {
	delay := time.Duration(float64(m.config.InitialDelay) * math.Pow(m.config.Multiplier, float64(attempt)))
	if delay > m.config.MaxDelay {
		delay = m.config.MaxDelay
	}
	return delay
}

// DoWithResult executes fn with retry logic and returns its result.
func DoWithResult[T any](ctx context.Context, m *Middleware, fn func() (T, error)) (T, error) {
	var result T

	err := m.Do(ctx, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	if err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}
