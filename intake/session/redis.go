package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m3rciful/intakebot/core/logger"
)

const redisKeyPrefix = "intake:session:"

// RedisStore keeps sessions as JSON documents; the TTL is refreshed on every read and write.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisStore wraps an existing client. The client is not closed by Close.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func redisKey(userID int64) string {
	return redisKeyPrefix + strconv.FormatInt(userID, 10)
}

func (r *RedisStore) Get(ctx context.Context, userID int64) (*Session, bool, error) {
	key := redisKey(userID)
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: get %s: %w", ErrUnavailable, key, err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		// an undecodable document must not lock the user out until it expires
		logger.Warn(ctx, "intake.session", "session.corrupt", slog.String("driver", "redis"), logger.Err(err))
		if err := r.client.Del(ctx, key).Err(); err != nil {
			return nil, false, fmt.Errorf("%w: drop corrupt %s: %w", ErrUnavailable, key, err)
		}
		return nil, false, nil
	}
	if r.ttl > 0 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return nil, false, fmt.Errorf("%w: refresh ttl %s: %w", ErrUnavailable, key, err)
		}
	}
	return &s, true, nil
}

func (r *RedisStore) Put(ctx context.Context, userID int64, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(userID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("%w: set: %w", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Clear(ctx context.Context, userID int64) error {
	if err := r.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("%w: del: %w", ErrUnavailable, err)
	}
	return nil
}

func (r *RedisStore) Close() error {
	return nil
}
