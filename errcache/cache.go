package errcache

import (
	"time"

	"github.com/patrickmn/go-cache"
)

// ErrCache remembers recent failures by key so that repeated lookups can skip the slow path.
type ErrCache struct {
	cache *cache.Cache
}

func NewErrCache(expiration time.Duration) *ErrCache {
	return &ErrCache{cache: cache.New(expiration, expiration*2)}
}

func (e *ErrCache) Get(key string) error {
	if err, ok := e.cache.Get(key); ok {
		return err.(error)
	}
	return nil
}

func (e *ErrCache) Set(key string, err error) {
	e.cache.Set(key, err, cache.DefaultExpiration)
}

func (e *ErrCache) Forget(key string) {
	e.cache.Delete(key)
}
