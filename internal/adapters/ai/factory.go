package ai

import (
	"time"

	"fable/internal/adapters/config"
	"fable/pkg/errors"
	"fable/pkg/logger"
)

// BuildRegistry constructs clients for every vendor with an API key
// present and registers them. Vendors without keys are skipped
// entirely; nothing is deferred to first use.
func BuildRegistry(cfg config.AIConfig) (*Registry, error) {
	registry := NewRegistry()

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout()
	}

	if cfg.OpenAIKey != "" {
		limiter := buildLimiter(cfg, ProviderNameOpenAI)
		if err := registry.Register(NewOpenAIClient(cfg.OpenAIKey, timeout, limiter)); err != nil {
			return nil, err
		}
	}

	if cfg.AnthropicKey != "" {
		limiter := buildLimiter(cfg, ProviderNameAnthropic)
		if err := registry.Register(NewAnthropicClient(cfg.AnthropicKey, timeout, limiter)); err != nil {
			return nil, err
		}
	}

	if cfg.GeminiKey != "" {
		limiter := buildLimiter(cfg, ProviderNameGoogle)
		client, err := NewGeminiClient(cfg.GeminiKey, timeout, limiter)
		if err != nil {
			return nil, err
		}
		if err := registry.Register(client); err != nil {
			return nil, err
		}
	}

	if len(registry.List()) == 0 {
		return nil, errors.Wrap(errors.ErrUnavailable, "no AI providers configured")
	}

	log := logger.Get().With("component", "ai_factory")
	for _, name := range AllProviderNames() {
		if _, err := registry.Get(name); err != nil {
			log.Infow("Provider has no API key, skipping", "provider", name)
		}
	}

	return registry, nil
}

func buildLimiter(cfg config.AIConfig, provider ProviderName) *TokenBucketLimiter {
	return NewLimiterFromConfig(RateLimitConfig{
		Enabled:      cfg.RateLimitEnabled,
		ReqPerMinute: cfg.RateLimitPerMinute,
		Burst:        cfg.RateLimitBurst,
	}, provider)
}

func defaultTimeout() time.Duration {
	return 60 * time.Second
}
