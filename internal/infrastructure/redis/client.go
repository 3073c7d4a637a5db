package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mymoolah/walletcore/internal/infrastructure/retry"
)

// Option tunes the client built by NewClient.
type Option func(*options)

type options struct {
	attempts int
	backoff  time.Duration
}

// WithConnectRetry retries the startup ping.
func WithConnectRetry(attempts int, backoff time.Duration) Option {
	return func(o *options) {
		o.attempts = attempts
		o.backoff = backoff
	}
}

// NewClient creates a Redis client and waits for it to answer a ping.
func NewClient(ctx context.Context, redisURL string, opts ...Option) (*redis.Client, error) {
	o := options{attempts: 1, backoff: 200 * time.Millisecond}
	for _, opt := range opts {
		opt(&o)
	}

	parsed, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(parsed)

	err = retry.Do(ctx, retry.Exponential(o.attempts, o.backoff, 10*o.backoff), func(ctx context.Context, _ int) error {
		return client.Ping(ctx).Err()
	})
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}
