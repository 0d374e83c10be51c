package utils

import (
	"sync"

	"github.com/dolthub/swiss"
	"github.com/floatdrop/lru"
)

// Cache thread-safe key/value cache. Implementations differ in eviction
// policy only.
type Cache[K comparable, V any] interface {
	Get(key K) (V, bool)
	Set(key K, value V)
	Clear()
}

type lruCache[K comparable, V any] struct {
	lock  sync.Mutex
	size  int
	inner *lru.LRU[K, V]
}

// NewLRUCache bounded cache, evicts the least recently used entry when full
func NewLRUCache[K comparable, V any](size int) Cache[K, V] {
	return &lruCache[K, V]{
		size:  size,
		inner: lru.New[K, V](size),
	}
}

func (c *lruCache[K, V]) Get(key K) (V, bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if v := c.inner.Get(key); v != nil {
		return *v, true
	}
	var zeroV V
	return zeroV, false
}

func (c *lruCache[K, V]) Set(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.inner.Set(key, value)
}

func (c *lruCache[K, V]) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.inner = lru.New[K, V](c.size)
}

type mapCache[K comparable, V any] struct {
	lock  sync.RWMutex
	inner *swiss.Map[K, V]
}

// NewMapCache unbounded cache, entries stay until Clear
func NewMapCache[K comparable, V any](preAllocatedSize int) Cache[K, V] {
	return &mapCache[K, V]{
		//nolint:gosec
		inner: swiss.NewMap[K, V](uint32(preAllocatedSize)),
	}
}

func (c *mapCache[K, V]) Get(key K) (V, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.inner.Get(key)
}

func (c *mapCache[K, V]) Set(key K, value V) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.inner.Put(key, value)
}

func (c *mapCache[K, V]) Clear() {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.inner.Clear()
}
