package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/sdscatalog/pkg/cache"
)

func TestRedis_UnavailableIsMiss(t *testing.T) {
	ctx := context.Background()

	for name, c := range map[string]*cache.Redis{
		"nil":         nil,
		"zero":        {},
		"unreachable": cache.NewRedis(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})),
	} {
		t.Run(name, func(t *testing.T) {
			var dest map[string]string
			assert.False(t, c.Get(ctx, "sds:1", &dest))
			assert.Nil(t, dest)
		})
	}
}

func TestRedis_NilSafeWrites(t *testing.T) {
	ctx := context.Background()
	var c *cache.Redis

	assert.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))
	assert.NoError(t, c.Del(ctx, "k"))
	assert.NoError(t, c.Close())
	assert.Error(t, c.Ping(ctx))
}
