// ABOUTME: Thread-safe TTL cache of per-session panel collections
// ABOUTME: Panels filter and re-render from here; mutations refetch or patch in place

package panel

import (
	"container/list"
	"context"
	"sync"
	"time"
)

// cacheEntry stores one session's collection for a panel.
type cacheEntry[T any] struct {
	items     []T
	fetchedAt time.Time
	element   *list.Element
}

// Cache holds the last loaded collection of one panel for each client session.
// It is TTL-based and size-limited; the least recently written session is evicted first.
type Cache[T any] struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry[T]
	gens    map[string]uint64 // bumped on every write so late fetches can detect they are stale
	loading map[string]int    // loads in flight per key
	order   *list.List        // keys in write order (oldest at front)
	ttl     time.Duration
	maxSize int
	done    chan struct{}
	closed  bool
}

// New creates a cache with the given TTL and maximum number of sessions.
// A background goroutine periodically removes expired entries.
func New[T any](ttl time.Duration, maxSize int) *Cache[T] {
	c := &Cache[T]{
		entries: make(map[string]*cacheEntry[T]),
		gens:    make(map[string]uint64),
		loading: make(map[string]int),
		order:   list.New(),
		ttl:     ttl,
		maxSize: maxSize,
		done:    make(chan struct{}),
	}
	go c.cleanup()
	return c
}

// Get returns a copy of the cached collection if present and not expired.
func (c *Cache[T]) Get(key string) ([]T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok || time.Since(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return clone(entry.items), true
}

// Put replaces the cached collection.
func (c *Cache[T]) Put(key string, items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.putLocked(key, items)
}

// Load fetches the collection and caches it. If ctx is cancelled while the fetch
// is in flight, or another write landed for key meanwhile, the result is not cached.
// A cancelled load returns ctx.Err() and no items.
func (c *Cache[T]) Load(ctx context.Context, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	c.mu.Lock()
	startGen := c.gens[key]
	c.loading[key]++
	c.mu.Unlock()

	items, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	defer c.finishLoadLocked(key)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, err
	}
	if c.gens[key] == startGen {
		c.putLocked(key, items)
	}
	return clone(items), nil
}

// finishLoadLocked ends one in-flight load. Must be called with mu held.
func (c *Cache[T]) finishLoadLocked(key string) {
	if c.loading[key] <= 1 {
		delete(c.loading, key)
	} else {
		c.loading[key]--
	}
	c.forgetLocked(key)
}

// forgetLocked drops the generation of a key that has neither an entry nor a
// load in flight, so per-session bookkeeping does not outlive the session.
// Must be called with mu held.
func (c *Cache[T]) forgetLocked(key string) {
	if _, cached := c.entries[key]; cached {
		return
	}
	if c.loading[key] > 0 {
		return
	}
	delete(c.gens, key)
}

// Patch applies fn to the cached collection in place. It returns false when
// nothing is cached for key, in which case fn is not called.
func (c *Cache[T]) Patch(key string, fn func([]T) []T) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return false
	}
	entry.items = fn(entry.items)
	c.gens[key]++
	return true
}

// Invalidate drops the cached collection so the next read refetches.
func (c *Cache[T]) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.entries[key]; ok {
		c.order.Remove(entry.element)
		delete(c.entries, key)
	}
	c.gens[key]++
	c.forgetLocked(key)
}

// putLocked stores items. Must be called with mu held.
func (c *Cache[T]) putLocked(key string, items []T) {
	now := time.Now()
	c.gens[key]++

	if entry, exists := c.entries[key]; exists {
		entry.items = clone(items)
		entry.fetchedAt = now
		c.order.MoveToBack(entry.element)
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	elem := c.order.PushBack(key)
	c.entries[key] = &cacheEntry[T]{
		items:     clone(items),
		fetchedAt: now,
		element:   elem,
	}
}

// evictOldest removes the oldest entry. Must be called with mu held.
func (c *Cache[T]) evictOldest() {
	front := c.order.Front()
	if front == nil {
		return
	}

	key, _ := front.Value.(string)
	c.order.Remove(front)
	delete(c.entries, key)
	c.forgetLocked(key)
}

// cleanup runs in a background goroutine, periodically removing expired entries.
func (c *Cache[T]) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.runCleanup()
		case <-c.done:
			return
		}
	}
}

// runCleanup removes all expired entries from the cache.
func (c *Cache[T]) runCleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.fetchedAt) >= c.ttl {
			c.order.Remove(entry.element)
			delete(c.entries, key)
			c.forgetLocked(key)
		}
	}
}

// Close stops the background cleanup goroutine. It is safe to call multiple times.
func (c *Cache[T]) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		close(c.done)
		c.closed = true
	}
}

func clone[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	out := make([]T, len(items))
	copy(out, items)
	return out
}
