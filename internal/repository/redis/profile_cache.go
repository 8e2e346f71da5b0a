package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/domain"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/metrics"
	"github.com/njprem/Opportunity_Catalog_BackEnd/internal/repository/ports"
)

const DefaultProfileTTL = 5 * time.Minute

// ProfileCache is a read-through cache in front of a ProfileRepository.
// Redis failures are logged and the read falls through to the source.
type ProfileCache struct {
	client *goredis.Client
	source ports.ProfileRepository
	ttl    time.Duration
	logger *zap.Logger
}

func NewProfileCache(client *goredis.Client, source ports.ProfileRepository, ttl time.Duration, logger *zap.Logger) *ProfileCache {
	if ttl <= 0 {
		ttl = DefaultProfileTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileCache{client: client, source: source, ttl: ttl, logger: logger}
}

func profileKey(userID uuid.UUID) string {
	return fmt.Sprintf("user:profile:%s", userID)
}

func (c *ProfileCache) FindByUserID(ctx context.Context, userID uuid.UUID) (*domain.UserProfile, error) {
	key := profileKey(userID)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var profile domain.UserProfile
		if jsonErr := json.Unmarshal(raw, &profile); jsonErr == nil {
			metrics.ProfileCacheLookups.WithLabelValues("hit").Inc()
			return &profile, nil
		}
		c.logger.Warn("discarding unreadable cached profile", zap.String("key", key))
	case err == goredis.Nil:
	default:
		c.logger.Warn("profile cache read failed", zap.String("key", key), zap.Error(err))
	}
	metrics.ProfileCacheLookups.WithLabelValues("miss").Inc()

	profile, err := c.source.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if payload, err := json.Marshal(profile); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.Warn("profile cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return profile, nil
}

// Invalidate drops the cached copy after the profile changes.
func (c *ProfileCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	return c.client.Del(ctx, profileKey(userID)).Err()
}

var _ ports.ProfileRepository = (*ProfileCache)(nil)
