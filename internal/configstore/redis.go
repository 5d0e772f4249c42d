package configstore

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKeyPrefix namespaces configuration blobs in Redis.
const RedisKeyPrefix = "statboard:config:"

// RedisClient defines the subset of the Redis client used for blobs
type RedisClient interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Pipeline() redis.Pipeliner
}

// RedisBlobs stores each blob as a plain string key.
type RedisBlobs struct {
	client RedisClient
}

func NewRedisBlobs(client RedisClient) *RedisBlobs {
	return &RedisBlobs{client: client}
}

func (r *RedisBlobs) ReadBlobs(ctx context.Context, keys []string) (map[string]string, error) {
	out := make(map[string]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}

	redisKeys := make([]string, len(keys))
	for i, k := range keys {
		redisKeys[i] = RedisKeyPrefix + k
	}

	vals, err := r.client.MGet(ctx, redisKeys...).Result()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	for i, v := range vals {
		if s, ok := v.(string); ok {
			out[keys[i]] = s
		}
	}
	return out, nil
}

func (r *RedisBlobs) WriteBlobs(ctx context.Context, blobs []Blob) error {
	if len(blobs) == 0 {
		return nil
	}
	pipe := r.client.Pipeline()
	for _, b := range blobs {
		pipe.Set(ctx, RedisKeyPrefix+b.Key, b.Value, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return fmt.Errorf("redis pipeline: %w", err)
	}
	return nil
}
