package datastores

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/t2bot/transfer-repo/common/rcontext"
)

type mapUrlCache struct {
	values map[string]string
	ttls   map[string]time.Duration
}

func (m *mapUrlCache) StoreURL(ctx rcontext.RequestContext, cacheKey string, url string, expiration time.Duration) error {
	m.values[cacheKey] = url
	m.ttls[cacheKey] = expiration
	return nil
}

func (m *mapUrlCache) TryGetURL(ctx rcontext.RequestContext, cacheKey string) (string, error) {
	return m.values[cacheKey], nil
}

func TestPresignCacheReusesUrl(t *testing.T) {
	inner := NewLocalDatastore(memfs.New(), "k", "http://localhost")
	cache := &mapUrlCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
	ds := WithPresignCache(inner, cache, 10*time.Minute)
	ctx := testCtx()

	first, err := ds.PresignDownload(ctx, "transfers/a/b.zip", time.Hour, "b.zip")
	require.NoError(t, err)

	// a later clock would produce a different signature if the url were not reused
	inner.now = func() time.Time { return time.Now().Add(time.Minute) }
	second, err := ds.PresignDownload(ctx, "transfers/a/b.zip", time.Hour, "b.zip")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	for _, ttl := range cache.ttls {
		assert.Equal(t, 10*time.Minute, ttl)
	}
}

func TestPresignCacheClampsToHalfLifetime(t *testing.T) {
	inner := NewLocalDatastore(memfs.New(), "k", "http://localhost")
	cache := &mapUrlCache{values: map[string]string{}, ttls: map[string]time.Duration{}}
	ds := WithPresignCache(inner, cache, time.Hour)

	_, err := ds.PresignDownload(testCtx(), "transfers/a/b.zip", 10*time.Minute, "b.zip")
	require.NoError(t, err)
	require.Len(t, cache.ttls, 1)
	for _, ttl := range cache.ttls {
		assert.Equal(t, 5*time.Minute, ttl)
	}
}

func TestPresignCacheDisabled(t *testing.T) {
	inner := NewLocalDatastore(memfs.New(), "k", "http://localhost")
	assert.Same(t, inner, WithPresignCache(inner, nil, time.Minute).(*LocalDatastore))
}
