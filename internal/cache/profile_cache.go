package cache

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/northgate-labs/user-service/internal/domain"
	"github.com/northgate-labs/user-service/internal/persistence"
)

const profileKeyPrefix = "user:profile:"

// Profile is the redacted projection stored in Redis. The password hash
// never enters the cache.
type Profile struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	Status    domain.UserStatus `json:"status"`
	Role      domain.UserRole   `json:"role"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// NewProfile projects a user into its cacheable form.
func NewProfile(user *domain.User) *Profile {
	return &Profile{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Status:    user.Status,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// User rebuilds a domain user from the cached projection. PasswordHash is
// left empty; cached reads serve display paths only.
func (p *Profile) User() *domain.User {
	return &domain.User{
		ID:        p.ID,
		Name:      p.Name,
		Email:     p.Email,
		Status:    p.Status,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// ProfileCache is a read-through Redis cache for public user profiles.
// Redis being unreachable degrades to cache misses; it never fails a read.
type ProfileCache struct {
	redis  *persistence.Redis
	ttl    time.Duration
	logger *zap.Logger
}

// NewProfileCache builds the cache.
func NewProfileCache(redis *persistence.Redis, ttl time.Duration, logger *zap.Logger) *ProfileCache {
	return &ProfileCache{redis: redis, ttl: ttl, logger: logger}
}

// Get returns the cached profile for the id, if present.
func (c *ProfileCache) Get(ctx context.Context, id string) (*Profile, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	raw, err := c.redis.Client.Get(ctx, profileKeyPrefix+id).Bytes()
	if err != nil {
		return nil, false
	}
	var profile Profile
	if err := json.Unmarshal(raw, &profile); err != nil {
		c.logger.Warn("corrupt cached profile", zap.String("user_id", id), zap.Error(err))
		return nil, false
	}
	return &profile, true
}

// Set stores the profile with the configured TTL.
func (c *ProfileCache) Set(ctx context.Context, profile *Profile) {
	if c == nil || c.redis == nil || c.redis.Client == nil || profile == nil {
		return
	}
	raw, err := json.Marshal(profile)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, profileKeyPrefix+profile.ID, raw, c.ttl).Err(); err != nil {
		c.logger.Warn("profile cache write failed", zap.String("user_id", profile.ID), zap.Error(err))
	}
}

// Invalidate drops the cached profile after a mutation.
func (c *ProfileCache) Invalidate(ctx context.Context, id string) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Del(ctx, profileKeyPrefix+id).Err(); err != nil {
		c.logger.Warn("profile cache invalidation failed", zap.String("user_id", id), zap.Error(err))
	}
}
