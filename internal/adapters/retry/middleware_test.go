package retry

import (
	"context"
	"testing"
	"time"

	"fable/pkg/errors"
)

func fastConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     10 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestMiddleware_SucceedsAfterFailures(t *testing.T) {
	m := New(fastConfig())

	attempts := 0
	err := m.Do(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
}

func TestMiddleware_ExhaustsAttempts(t *testing.T) {
	m := New(fastConfig())

	attempts := 0
	sentinel := errors.New("always failing")
	err := m.Do(context.Background(), func() error {
		attempts++
		return sentinel
	})

	if err == nil {
		t.Fatal("Do() should fail after exhausting attempts")
	}
	if attempts != 3 {
		t.Errorf("attempts = %d, want 3", attempts)
	}
	if !errors.Is(err, sentinel) {
		t.Errorf("Do() error should wrap the last failure, got %v", err)
	}
}

func TestMiddleware_ContextCancellation(t *testing.T) {
	m := New(Config{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     time.Second,
		Multiplier:   1.0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	attempts := 0
	err := m.Do(ctx, func() error {
		attempts++
		return errors.New("fail")
	})

	if err == nil {
		t.Fatal("Do() should fail when context is cancelled mid-backoff")
	}
	if attempts != 1 {
		t.Errorf("attempts = %d, want 1 (cancelled during first backoff)", attempts)
	}
}

func TestMiddleware_DelayGrowth(t *testing.T) {
	m := New(Config{
		MaxAttempts:  3,
		InitialDelay: time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	})

	if d := m.delay(0); d != time.Second {
		t.Errorf("delay(0) = %v, want 1s", d)
	}
	if d := m.delay(1); d != 2*time.Second {
		t.Errorf("delay(1) = %v, want 2s", d)
	}
	if d := m.delay(10); d != 30*time.Second {
		t.Errorf("delay(10) = %v, want capped at 30s", d)
	}
}

func TestDoWithResult(t *testing.T) {
	m := New(fastConfig())

	attempts := 0
	got, err := DoWithResult(context.Background(), m, func() (string, error) {
		attempts++
		if attempts < 2 {
			return "", errors.New("transient")
		}
		return "a story continuation", nil
	})

	if err != nil {
		t.Fatalf("DoWithResult() error = %v", err)
	}
	if got != "a story continuation" {
		t.Errorf("DoWithResult() = %q", got)
	}
}

func TestDoWithResult_Failure(t *testing.T) {
	m := New(fastConfig())

	got, err := DoWithResult(context.Background(), m, func() (string, error) {
		return "partial", errors.New("fail")
	})

	if err == nil {
		t.Fatal("DoWithResult() should fail")
	}
	if got != "" {
		t.Errorf("DoWithResult() should return zero value on failure, got %q", got)
	}
}
