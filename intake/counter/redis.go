package counter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey holds the counter when no key is configured.
const DefaultRedisKey = "intake:request_counter"

// RedisSource uses INCR, which is atomic across every bot replica sharing the server.
type RedisSource struct {
	client redis.UniversalClient
	key    string
}

func NewRedisSource(client redis.UniversalClient, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{client: client, key: key}
}

func (r *RedisSource) Next(ctx context.Context) (int, error) {
	v, err := r.client.Incr(ctx, r.key).Result()
	if err != nil {
		return 0, fmt.Errorf("counter redis incr %s: %w", r.key, err)
	}
	return int(v), nil
}
