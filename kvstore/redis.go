package kvstore

import (
	"context"

	apperrors "github.com/jrsteele09/web-analyzer-client/internal/errors"
	"github.com/redis/go-redis/v9"
)

type redisStore struct {
	client *redis.Client
	cfg    RedisConfig
}

// NewRedis constructs a redis-backed store and checks the connection.
func NewRedis(ctx context.Context, cfg RedisConfig) (Storage, error) {
	if cfg.Addr == "" {
		return nil, apperrors.Wrapf(apperrors.ErrMissingConfig, "[kvstore NewRedis] redis address")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, apperrors.Wrapf(err, "[kvstore NewRedis] redis ping failed")
	}
	return &redisStore{client: client, cfg: cfg}, nil
}

func (s *redisStore) key(k string) string {
	return s.cfg.Prefix + k
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if apperrors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return v, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.key(key), value, s.cfg.TTL).Err()
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	return s.client.Del(ctx, s.key(key)).Err()
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
