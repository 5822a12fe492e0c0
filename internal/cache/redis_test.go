package cache

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ramouth/BiomeQuest-sub000/internal/config"
	"github.com/Ramouth/BiomeQuest-sub000/pkg/logger"
)

func setupRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, logger.Nop())
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_GetSet(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	val, err := c.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, val)

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	mr.FastForward(2 * time.Minute)
	val, err = c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Empty(t, val, "expired keys read as missing")
}

func TestRedisCache_SetWithExpiryAndDel(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "version", "abc", 10*time.Minute))
	assert.Equal(t, 10*time.Minute, mr.TTL("version"))

	require.NoError(t, c.Set(ctx, "forever", "x", 0))
	assert.Equal(t, time.Duration(0), mr.TTL("forever"), "zero expiration keeps the key")

	require.NoError(t, c.Del(ctx, "version", "forever"))
	require.NoError(t, c.Del(ctx))
	val, err := c.Get(ctx, "version")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestRedisCache_ErrorsWhenServerDown(t *testing.T) {
	c, mr := setupRedis(t)
	ctx := context.Background()
	mr.Close()

	_, err := c.Get(ctx, "k")
	assert.Error(t, err)
	assert.Error(t, c.Health(ctx))
}

func TestNewRedisCache(t *testing.T) {
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	c, err := NewRedisCache(&config.RedisConfig{Host: mr.Host(), Port: port, PoolSize: 2}, logger.Nop())
	require.NoError(t, err)
	defer c.Close()

	assert.NoError(t, c.Health(context.Background()))
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host := mr.Host()
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	// Host and Port read the listener, so capture them before closing.
	mr.Close()

	_, err = NewRedisCache(&config.RedisConfig{Host: host, Port: port}, logger.Nop())
	assert.Error(t, err)
}
