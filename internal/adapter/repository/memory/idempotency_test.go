package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mymoolah/walletcore/internal/usecase"
)

func TestIdempotencyStore(t *testing.T) {
	ctx := context.Background()
	s := NewIdempotencyStore()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	exists, _, err := s.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, value, err := s.CheckAndSet(ctx, "k", nil, time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, usecase.IdempotencyPending, string(value))

	require.NoError(t, s.Update(ctx, "k", []byte(`{"ok":true}`), time.Minute))
	_, value, _ = s.CheckAndSet(ctx, "k", nil, time.Minute)
	assert.Equal(t, `{"ok":true}`, string(value))

	now = now.Add(2 * time.Minute)
	exists, _, _ = s.CheckAndSet(ctx, "k", nil, time.Minute)
	assert.False(t, exists, "expired claim should be replaced")

	require.NoError(t, s.Release(ctx, "k"))
	exists, _, _ = s.CheckAndSet(ctx, "k", nil, time.Minute)
	assert.False(t, exists)
}
