package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a typed key/value cache with per-entry TTL.
// The compiler uses it for values that are expensive to resolve but
// never change for a given key, such as timezone locations and persisted
// field metadata.
type Cache[V any] interface {
	// Get returns the value and true if present and not expired
	Get(key string) (V, bool)

	// Set stores a value with the given TTL
	Set(key string, value V, ttl time.Duration)

	// GetOrSet returns the cached value or computes and stores it.
	// Errors from compute are returned and nothing is cached. ctx only
	// bounds how long the caller waits; compute receives a context that
	// keeps ctx's values but not its cancellation.
	GetOrSet(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error)

	// Delete removes a key
	Delete(key string)

	// Clear removes every key
	Clear()

	// Size returns the number of entries, expired ones included until cleanup
	Size() int

	// Stop ends the cleanup goroutine
	Stop()
}

type entry[V any] struct {
	value      V
	expiration time.Time
}

func (e *entry[V]) isExpired(now time.Time) bool {
	return now.After(e.expiration)
}

// InMemoryCache is a thread-safe in-memory Cache
type InMemoryCache[V any] struct {
	items           map[string]*entry[V]
	mu              sync.RWMutex
	loads           singleflight.Group
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	stopOnce        sync.Once
}

// NewInMemoryCache creates a cache that evicts expired entries every cleanupInterval
func NewInMemoryCache[V any](cleanupInterval time.Duration) *InMemoryCache[V] {
	c := &InMemoryCache[V]{
		items:           make(map[string]*entry[V]),
		cleanupInterval: cleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go c.startCleanup()

	return c
}

// Get retrieves a value from the cache
func (c *InMemoryCache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero V
	e, found := c.items[key]
	if !found || e.isExpired(time.Now()) {
		return zero, false
	}
	return e.value, true
}

// Set stores a value in the cache with the specified TTL
func (c *InMemoryCache[V]) Set(key string, value V, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = &entry[V]{value: value, expiration: time.Now().Add(ttl)}
}

// GetOrSet loads a missing key once for all concurrent callers of that
// key. compute runs outside the cache lock so loads of different keys
// proceed in parallel.
func (c *InMemoryCache[V]) GetOrSet(ctx context.Context, key string, ttl time.Duration, compute func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	loadCtx := context.WithoutCancel(ctx)
	ch := c.loads.DoChan(key, func() (interface{}, error) {
		// Another load may have finished between Get and DoChan
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		value, err := compute(loadCtx)
		if err != nil {
			return nil, err
		}
		c.Set(key, value, ttl)
		return value, nil
	})

	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		value, _ := res.Val.(V)
		return value, nil
	}
}

// Delete removes a specific key from the cache
func (c *InMemoryCache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
}

// Clear removes all items from the cache
func (c *InMemoryCache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*entry[V])
}

// Size returns the number of items currently in the cache
func (c *InMemoryCache[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Stop shuts down the cleanup goroutine. Safe to call more than once.
func (c *InMemoryCache[V]) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCleanup)
	})
}

func (c *InMemoryCache[V]) startCleanup() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *InMemoryCache[V]) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, e := range c.items {
		if e.isExpired(now) {
			delete(c.items, key)
		}
	}
}
