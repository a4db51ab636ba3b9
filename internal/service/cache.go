package service

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// cacheItem wraps a cached value with its expiry
type cacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// SearchCache is a size-bounded LRU whose entries also expire after a TTL
type SearchCache[T any] struct {
	storage *lru.Cache[string, cacheItem[T]]
	ttl     time.Duration
	now     func() time.Time
}

// NewSearchCache creates a cache holding at most size entries for ttl each
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	if size <= 0 {
		size = 128
	}
	c, _ := lru.New[string, cacheItem[T]](size) // only fails for size <= 0
	return &SearchCache[T]{storage: c, ttl: ttl, now: time.Now}
}

func (c *SearchCache[T]) Set(key string, value T) {
	c.storage.Add(key, cacheItem[T]{Value: value, ExpiredAt: c.now().Add(c.ttl)})
}

// Get returns the value for key unless it is missing or expired
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}
	if c.now().After(item.ExpiredAt) {
		c.storage.Remove(key)
		return zero, false
	}
	return item.Value, true
}

func (c *SearchCache[T]) Delete(key string) { c.storage.Remove(key) }
func (c *SearchCache[T]) Clear()            { c.storage.Purge() }
func (c *SearchCache[T]) Len() int          { return c.storage.Len() }
