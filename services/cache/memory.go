package cachesvc

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hajerbook/backend/core"
)

type memoryCache struct {
	c *gocache.Cache
}

var _ core.Cache = (*memoryCache)(nil)

// NewMemoryCache keeps entries for conf.SummaryCacheTTL; a zero TTL disables expiration.
func NewMemoryCache(conf *core.Config) core.Cache {
	ttl := conf.SummaryCacheTTL
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &memoryCache{c: gocache.New(ttl, 10*time.Minute)}
}

func (mc *memoryCache) Get(key string) (interface{}, bool) {
	return mc.c.Get(key)
}

func (mc *memoryCache) Set(key string, value interface{}) {
	mc.c.Set(key, value, gocache.DefaultExpiration)
}

func (mc *memoryCache) Delete(key string) {
	mc.c.Delete(key)
}
