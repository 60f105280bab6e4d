package storage

import (
	"context"
	"testing"
	"time"

	"cryptosage/config"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreKeyPrefix(t *testing.T) {
	s := NewRedisStoreWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "sage:")
	defer s.Close()

	k, err := s.key("watchlist")
	require.NoError(t, err)
	assert.Equal(t, "sage:watchlist", k)

	_, err = s.key("../x")
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestOpenRedisUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	_, err := Open(ctx, config.StoreConfig{Backend: "redis", RedisAddr: "127.0.0.1:1"})
	assert.Error(t, err)
}

func TestOpenBackends(t *testing.T) {
	s, err := Open(context.Background(), config.StoreConfig{Backend: "file", Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	_, err = Open(context.Background(), config.StoreConfig{Backend: "sqlite"})
	assert.Error(t, err)
}
