package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const shortLinkTTL = 24 * time.Hour

type (
	Cache interface {
		GetShortLink(ctx context.Context, code string) (uuid.UUID, bool)
		SetShortLink(ctx context.Context, code string, recipeID uuid.UUID)
	}

	redisCache struct {
		client *redis.Client
	}
)

func NewRedisCache(addr string, password string) Cache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	return &redisCache{client: client}
}

// Lookup misses on any redis error so callers always fall through to the
// database.
func (r *redisCache) GetShortLink(ctx context.Context, code string) (uuid.UUID, bool) {
	raw, err := r.client.Get(ctx, "shortlink:"+code).Result()
	if err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (r *redisCache) SetShortLink(ctx context.Context, code string, recipeID uuid.UUID) {
	r.client.Set(ctx, "shortlink:"+code, recipeID.String(), shortLinkTTL)
}
