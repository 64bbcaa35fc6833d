package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type redisCache struct {
	lg     *zap.Logger
	client *redis.Client
}

// NewRedisCache uses an already connected client, see util.NewRedisClient.
// The caller owns the client and closes it.
func NewRedisCache(lg *zap.Logger, client *redis.Client) Cache {
	return &redisCache{
		lg:     lg,
		client: client,
	}
}

func (c *redisCache) Set(ctx context.Context, key string, value string, expiry time.Duration) error {
	if err := c.client.Set(ctx, key, value, expiry).Err(); err != nil {
		c.lg.Error("failed to set cache key", zap.String("key", key), zap.Error(err))
		return ErrBackend.Wrap(err)
	}
	return nil
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	data, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound.Wrapf("%s", key)
		}
		c.lg.Error("failed to get cache key", zap.String("key", key), zap.Error(err))
		return "", ErrBackend.Wrap(err)
	}

	return data, nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return ErrBackend.Wrap(err)
	}
	return nil
}
