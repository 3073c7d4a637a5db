// Package retry runs an operation with bounded exponential backoff.
package retry

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrExhausted is returned when every attempt failed.
var ErrExhausted = errors.New("retry attempts exhausted")

// Policy bounds a retry loop.
type Policy struct {
	// MaxAttempts is the total number of calls, including the first.
	MaxAttempts int
	// InitialDelay is waited once before the first attempt.
	InitialDelay time.Duration
	// BaseDelay is the wait after the first failure.
	BaseDelay time.Duration
	// Multiplier grows the wait after each failure; 1 keeps it fixed.
	Multiplier float64
	// MaxDelay caps a single wait.
	MaxDelay time.Duration
}

// Fixed returns a policy polling every interval.
func Fixed(attempts int, initialDelay, interval time.Duration) Policy {
	return Policy{
		MaxAttempts:  attempts,
		InitialDelay: initialDelay,
		BaseDelay:    interval,
		Multiplier:   1,
		MaxDelay:     interval,
	}
}

// Exponential returns a doubling policy capped at maxDelay.
func Exponential(attempts int, base, maxDelay time.Duration) Policy {
	return Policy{
		MaxAttempts: attempts,
		BaseDelay:   base,
		Multiplier:  2,
		MaxDelay:    maxDelay,
	}
}

// Permanent wraps err so Do stops immediately and returns err.
func Permanent(err error) error {
	return backoff.Permanent(err)
}

// Do calls op until it succeeds, returns a Permanent error, the context is
// done or MaxAttempts is reached. attempt counts from 1. On exhaustion the
// last error is returned joined with ErrExhausted.
func Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) error {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = 1
	}

	if p.InitialDelay > 0 {
		timer := time.NewTimer(p.InitialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = p.Multiplier
	if b.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.MaxInterval = p.MaxDelay
	if b.MaxInterval < b.InitialInterval {
		b.MaxInterval = b.InitialInterval
	}
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	attempt := 0
	var last error
	err := backoff.Retry(func() error {
		attempt++
		last = op(ctx, attempt)
		return last
	}, backoff.WithContext(backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1)), ctx))
	if err == nil {
		return nil
	}

	var perm *backoff.PermanentError
	if errors.As(last, &perm) || !errors.Is(err, last) {
		return err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return errors.Join(ctxErr, last)
	}
	return errors.Join(ErrExhausted, last)
}
