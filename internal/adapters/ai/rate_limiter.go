package ai

import (
	"context"
	"sync"
	"time"

	"fable/pkg/errors"
)

// RateLimitConfig describes per-vendor request throttling.
type RateLimitConfig struct {
	Enabled      bool
	ReqPerMinute float64
	Burst        int
}

// NewLimiterFromConfig builds a limiter for one vendor from throttling
// config. Returns nil (pass-through) when throttling is disabled.
func NewLimiterFromConfig(cfg RateLimitConfig, provider ProviderName) *TokenBucketLimiter {
	if !cfg.Enabled {
		return nil
	}
	return NewTokenBucketLimiter(provider, cfg.ReqPerMinute, cfg.Burst)
}

// TokenBucketLimiter throttles outbound vendor calls. Thread-safe.
// A nil limiter means no throttling; clients must treat nil as a
// pass-through.
type TokenBucketLimiter struct {
	rate       float64 // tokens per second
	burst      int
	tokens     float64
	lastUpdate time.Time
	mu         sync.Mutex
	provider   ProviderName
}

// NewTokenBucketLimiter creates a limiter from a requests-per-minute
// budget. Burst defaults to 10% of the rate.
func NewTokenBucketLimiter(provider ProviderName, reqPerMinute float64, burst int) *TokenBucketLimiter {
	if burst <= 0 {
		burst = int(reqPerMinute / 10)
		if burst < 1 {
			burst = 1
		}
	}

	return &TokenBucketLimiter{
		rate:       reqPerMinute / 60.0,
		burst:      burst,
		tokens:     float64(burst),
		lastUpdate: time.Now(),
		provider:   provider,
	}
}

// Wait blocks until a token is available or the context is cancelled.
func (l *TokenBucketLimiter) Wait(ctx context.Context) error {
	if l == nil {
		return nil
	}

	for {
		if l.Allow() {
			return nil
		}

		waitTime := time.Duration(float64(time.Second) / l.rate)

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "rate limiter wait cancelled for provider %s", l.provider)
		case <-time.After(waitTime):
		}
	}
}

// Allow consumes a token if one is available.
func (l *TokenBucketLimiter) Allow() bool {
	if l == nil {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(l.lastUpdate).Seconds()
	l.tokens += elapsed * l.rate
	if l.tokens > float64(l.burst) {
		l.tokens = float64(l.burst)
	}
	l.lastUpdate = now

	if l.tokens >= 1 {
		l.tokens--
		return true
	}
	return false
}

// Limit returns the configured requests per minute.
func (l *TokenBucketLimiter) Limit() float64 {
	if l == nil {
		return 0
	}
	return l.rate * 60.0
}
