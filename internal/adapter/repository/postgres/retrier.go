package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mymoolah/walletcore/internal/infrastructure/retry"
)

// PostgreSQL error codes for retryable errors. Lock timeouts show up when a
// sweep and a callback contend for the same movement row.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
	pgErrLockNotAvailable     = "55P03"
	pgErrQueryCanceled        = "57014"
)

// Retrier re-runs a write that lost a row-lock race.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	logger          zerolog.Logger
}

// NewRetrier creates a new PostgreSQL retrier with default settings.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		logger:          log.Logger,
	}
}

// WithMaxRetries bounds retries after the first attempt.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	if n >= 0 {
		r.maxRetries = n
	}
	return r
}

// WithLogger sets the logger used for retry warnings.
func (r *Retrier) WithLogger(l zerolog.Logger) *Retrier {
	r.logger = l
	return r
}

// Retry executes an operation with exponential backoff on retryable errors.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	policy := retry.Exponential(r.maxRetries+1, r.initialInterval, r.maxInterval)

	return retry.Do(ctx, policy, func(ctx context.Context, attempt int) error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return retry.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Str("sqlstate", sqlState(err)).
			Int("attempt", attempt).
			Msg("retryable database error, retrying")

		return err
	})
}

// isRetryableError reports whether err lost a lock or serialization race.
// Statement timeouts (57014) are retried only when the lock timer fired.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgErrDeadlock, pgErrSerializationFailure, pgErrLockNotAvailable:
		return true
	case pgErrQueryCanceled:
		return strings.Contains(pgErr.Message, "lock timeout")
	}
	return false
}

func sqlState(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
