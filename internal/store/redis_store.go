package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"primis/internal/domain"
)

const defaultRedisTimeout = 5 * time.Second

// RedisStorage keeps session values in Redis under "<prefix>:<key>".
// It lets several hosts share one signed-in session.
type RedisStorage struct {
	client  redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// NewRedisStorage wraps an existing client. An empty prefix defaults to "primis".
func NewRedisStorage(client redis.UniversalClient, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "primis"
	}
	return &RedisStorage{client: client, prefix: prefix, timeout: defaultRedisTimeout}
}

func (s *RedisStorage) redisKey(key string) string { return s.prefix + ":" + key }

func (s *RedisStorage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}

// Load returns the value stored under key and whether it was present.
func (s *RedisStorage) Load(key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	ctx, cancel := s.ctx()
	defer cancel()

	b, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Save stores value under key without expiry; the backend decides when a
// token stops being accepted.
func (s *RedisStorage) Save(key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Set(ctx, s.redisKey(key), value, 0).Err()
}

// Delete removes every given key in one round trip.
func (s *RedisStorage) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := checkKey(key); err != nil {
			return err
		}
		full = append(full, s.redisKey(key))
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Del(ctx, full...).Err()
}

// Ping checks the connection, used once at startup.
func (s *RedisStorage) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (s *RedisStorage) Close() error { return s.client.Close() }

var _ domain.Storage = (*RedisStorage)(nil)
