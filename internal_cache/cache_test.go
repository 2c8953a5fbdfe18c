package internal_cache

import (
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/redislib"
)

func countingFetch(count *int, payload string, err error) FetchFunction {
	return func() ([]byte, error) {
		*count++
		if err != nil {
			return nil, err
		}
		return []byte(payload), nil
	}
}

func testCaches(t *testing.T) map[string]DescriptorCache {
	server := miniredis.RunT(t)
	conn := redislib.NewConnectionFromRing(redis.NewRing(&redis.RingOptions{
		Addrs: map[string]string{"shard1": server.Addr()},
	}))
	t.Cleanup(conn.Close)

	conf := config.NewDefaultConfig().Cache
	return map[string]DescriptorCache{
		"memory": NewMemoryCache(conf),
		"redis":  NewRedisCache(conn, conf),
	}
}

func TestCachesFetchOnce(t *testing.T) {
	ctx := rcontext.Initial(config.NewDefaultConfig())
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			calls := 0
			fetch := countingFetch(&calls, `{"id":"abc"}`, nil)

			for i := 0; i < 3; i++ {
				b, err := c.GetDescriptor(ctx, "abc", fetch)
				require.NoError(t, err)
				assert.Equal(t, `{"id":"abc"}`, string(b))
			}
			assert.Equal(t, 1, calls)
		})
	}
}

func TestCachesDoNotCacheErrors(t *testing.T) {
	ctx := rcontext.Initial(config.NewDefaultConfig())
	boom := errors.New("not found")
	for name, c := range testCaches(t) {
		t.Run(name, func(t *testing.T) {
			calls := 0
			_, err := c.GetDescriptor(ctx, "missing", countingFetch(&calls, "", boom))
			assert.ErrorIs(t, err, boom)
			_, err = c.GetDescriptor(ctx, "missing", countingFetch(&calls, "", boom))
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, 2, calls)
		})
	}
}

func TestNoopAlwaysFetches(t *testing.T) {
	ctx := rcontext.Initial(config.NewDefaultConfig())
	calls := 0
	c := New(config.CacheConfig{Enabled: false}, nil)
	_, _ = c.GetDescriptor(ctx, "a", countingFetch(&calls, "x", nil))
	_, _ = c.GetDescriptor(ctx, "a", countingFetch(&calls, "x", nil))
	assert.Equal(t, 2, calls)
}
