package redis

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mymoolah/walletcore/internal/domain"
	"github.com/mymoolah/walletcore/internal/usecase"
)

const tierKeyPrefix = "tier:"

// CachedTierRepository serves tier lookups from the cache and falls through
// to the backing repository on a miss. Cache failures never fail a lookup.
type CachedTierRepository struct {
	next  usecase.TierRepository
	cache usecase.Cache
	ttl   time.Duration
}

var _ usecase.TierRepository = (*CachedTierRepository)(nil)

// NewCachedTierRepository wraps next with cache.
func NewCachedTierRepository(next usecase.TierRepository, cache usecase.Cache, ttl time.Duration) *CachedTierRepository {
	return &CachedTierRepository{next: next, cache: cache, ttl: ttl}
}

// GetUserTier returns the cached tier or loads and caches it.
func (r *CachedTierRepository) GetUserTier(ctx context.Context, userID string) (domain.TierLevel, error) {
	key := tierKeyPrefix + userID

	cached, err := r.cache.Get(ctx, key)
	if err == nil {
		if tier, parseErr := domain.ParseTierLevel(string(cached)); parseErr == nil {
			return tier, nil
		}
	} else if !errors.Is(err, ErrCacheMiss) {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("tier cache read failed")
	}

	tier, err := r.next.GetUserTier(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := r.cache.Set(ctx, key, []byte(tier), r.ttl); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("user_id", userID).Msg("tier cache write failed")
	}

	return tier, nil
}

// SetUserTier stores the tier and drops the cached value.
func (r *CachedTierRepository) SetUserTier(ctx context.Context, userID string, tier domain.TierLevel) error {
	if err := r.next.SetUserTier(ctx, userID, tier); err != nil {
		return err
	}
	return r.cache.Delete(ctx, tierKeyPrefix+userID)
}
