package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cryptosage/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps records as string values under a key prefix, so several
// terminals can share one profile.
type RedisStore struct {
	RDB    *redis.Client
	prefix string
	now    func() time.Time
}

// NewRedisStore connects and pings the server.
func NewRedisStore(ctx context.Context, cfg config.StoreConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return NewRedisStoreWithClient(rdb, cfg.RedisPrefix), nil
}

func NewRedisStoreWithClient(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{RDB: rdb, prefix: prefix, now: time.Now}
}

func (s *RedisStore) key(key string) (string, error) {
	if err := validateKey(key); err != nil {
		return "", err
	}
	return s.prefix + key, nil
}

func (s *RedisStore) Save(ctx context.Context, key string, v any) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	data, err := encode(v, s.now())
	if err != nil {
		return err
	}
	if err := s.RDB.Set(ctx, k, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, key string, v any) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	data, err := s.RDB.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if err := decode(data, v); err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	k, err := s.key(key)
	if err != nil {
		return err
	}
	if err := s.RDB.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Close() error { return s.RDB.Close() }
