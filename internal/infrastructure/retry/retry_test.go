package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoSucceedsAfterRetries(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Exponential(5, time.Millisecond, 4*time.Millisecond), func(_ context.Context, attempt int) error {
		attempts = attempt
		if attempt < 3 {
			return errors.New("transient")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	permanentErr := errors.New("permanent")
	attempts := 0

	err := Do(context.Background(), Fixed(5, 0, time.Millisecond), func(context.Context, int) error {
		attempts++
		return Permanent(permanentErr)
	})

	if !errors.Is(err, permanentErr) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if attempts != 1 {
		t.Fatalf("expected 1 attempt, got %d", attempts)
	}
}

func TestDoExhaustsAttempts(t *testing.T) {
	lastErr := errors.New("still pending")
	attempts := 0

	err := Do(context.Background(), Fixed(3, 0, time.Millisecond), func(context.Context, int) error {
		attempts++
		return lastErr
	})

	if !errors.Is(err, ErrExhausted) || !errors.Is(err, lastErr) {
		t.Fatalf("expected exhausted error wrapping last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoHonoursCancelledContextDuringInitialDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := Do(ctx, Fixed(3, time.Second, time.Second), func(context.Context, int) error {
		called = true
		return nil
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context canceled, got %v", err)
	}
	if called {
		t.Fatal("operation must not run after cancellation")
	}
}

func TestDoZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	_ = Do(context.Background(), Policy{}, func(context.Context, int) error {
		attempts++
		return errors.New("fail")
	})
	if attempts != 1 {
		t.Fatalf("expected a single attempt, got %d", attempts)
	}
}
